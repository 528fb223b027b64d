package controller

import (
	"net/http"

	"github.com/Zillorz/svue-api/src/middleware"
	"github.com/Zillorz/svue-api/src/utils"

	"github.com/gin-gonic/gin"
)

// Student godoc
// @Summary get student info
// @Description Returns the authenticated student's personal record.
// @Tags student
// @Produce json
// @Success 200 {object} service.StudentInfo
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /student [get]
func (c *Controller) Student(ctx *gin.Context) {
	rec, _ := middleware.Session(ctx)
	info, _, err := c.Service.StudentInfo(ctx.Request.Context(), rec)
	if err != nil {
		utils.ReplyError(ctx, err)
		return
	}

	c.reply(ctx, http.StatusOK, info)
}

// Photo godoc
// @Summary get student photo
// @Description Returns the student photo embedded in the StudentInfo
// payload as a PNG download.
// @Tags student
// @Produce png
// @Success 200 {file} binary
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /photo [get]
func (c *Controller) Photo(ctx *gin.Context) {
	rec, _ := middleware.Session(ctx)
	_, photo, err := c.Service.StudentInfo(ctx.Request.Context(), rec)
	if err != nil {
		utils.ReplyError(ctx, err)
		return
	}

	if err := c.refreshToken(ctx); err != nil {
		utils.ReplyError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="image.png"`)
	ctx.Data(http.StatusOK, "image/png", photo)
}
