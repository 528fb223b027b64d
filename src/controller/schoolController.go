package controller

import (
	"net/http"

	"github.com/Zillorz/svue-api/src/middleware"
	"github.com/Zillorz/svue-api/src/utils"

	"github.com/gin-gonic/gin"
)

// School godoc
// @Summary get school info
// @Description Returns the student's current school and its staff list.
// @Tags school
// @Produce json
// @Success 200 {object} service.SchoolInfo
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /school [get]
func (c *Controller) School(ctx *gin.Context) {
	rec, _ := middleware.Session(ctx)
	info, err := c.Service.SchoolInfo(ctx.Request.Context(), rec)
	if err != nil {
		utils.ReplyError(ctx, err)
		return
	}

	c.reply(ctx, http.StatusOK, info)
}
