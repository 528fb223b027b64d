package controller

import (
	"net/http"
	"strconv"

	"github.com/Zillorz/svue-api/src/middleware"
	"github.com/Zillorz/svue-api/src/utils"

	"github.com/gin-gonic/gin"
)

// Grades godoc
// @Summary get gradebook
// @Description Fetches the gradebook for the authenticated student,
// optionally for a specific reporting period.
// @Tags grades
// @Param report_period query int false "Reporting period index"
// @Produce json
// @Success 200 {object} service.GradebookResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /grades [get]
func (c *Controller) Grades(ctx *gin.Context) {
	var reportPeriod *int
	if raw := ctx.Query("report_period"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.SendError(ctx, http.StatusBadRequest, "Bad Request",
				"report_period must be an integer", "https://svue-api.com/validation-error", ctx.FullPath())
			return
		}
		reportPeriod = &n
	}

	rec, _ := middleware.Session(ctx)
	resp, err := c.Service.Gradebook(ctx.Request.Context(), rec, reportPeriod)
	if err != nil {
		utils.ReplyError(ctx, err)
		return
	}

	c.reply(ctx, http.StatusOK, resp)
}
