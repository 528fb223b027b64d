package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Zillorz/svue-api/src/middleware"
	"github.com/Zillorz/svue-api/src/utils"

	"github.com/gin-gonic/gin"
)

// Documents godoc
// @Summary list documents
// @Description Lists the documents attached to the student's record.
// @Tags documents
// @Produce json
// @Success 200 {array} service.Document
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /documents [get]
func (c *Controller) Documents(ctx *gin.Context) {
	rec, _ := middleware.Session(ctx)
	docs, err := c.Service.ListDocuments(ctx.Request.Context(), rec)
	if err != nil {
		utils.ReplyError(ctx, err)
		return
	}

	c.reply(ctx, http.StatusOK, docs)
}

// Document godoc
// @Summary download a document
// @Description Fetches one attached document by its GU. PDFs are served
// inline; everything else downloads as an attachment.
// @Tags documents
// @Param gu query string true "Document GU"
// @Produce octet-stream
// @Success 200 {file} binary
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /document [get]
func (c *Controller) Document(ctx *gin.Context) {
	gu := ctx.Query("gu")
	if gu == "" {
		utils.SendError(ctx, http.StatusBadRequest, "Bad Request",
			"gu query parameter is required", "https://svue-api.com/validation-error", ctx.FullPath())
		return
	}

	rec, _ := middleware.Session(ctx)
	doc, err := c.Service.GetDocument(ctx.Request.Context(), rec, gu)
	if err != nil {
		c.Logger.Error("Failed to fetch document: ", err.Error())
		utils.ReplyError(ctx, err)
		return
	}

	if err := c.refreshToken(ctx); err != nil {
		utils.ReplyError(ctx, err)
		return
	}

	if strings.HasSuffix(strings.ToLower(doc.FileName), ".pdf") {
		ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.FileName))
		ctx.Data(http.StatusOK, "application/pdf", doc.FileData)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	ctx.Data(http.StatusOK, "application/octet-stream", doc.FileData)
}
