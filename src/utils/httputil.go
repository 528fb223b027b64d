package utils

import (
	"errors"
	"net/http"

	"github.com/Zillorz/svue-api/src/models"

	"github.com/bytedance/gopkg/util/logger"
	"github.com/gin-gonic/gin"
)

func SendError(ctx *gin.Context, status int, title string, detail string, errType string, instance string) {
	errorResp := models.APIError{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
	ctx.JSON(status, errorResp)
	logger.Error("Error: ", detail)
}

// ReplyError maps a domain error onto its HTTP status and sends the
// RFC 7807 body.
func ReplyError(ctx *gin.Context, err error) {
	status := StatusFor(err)
	title := "Internal Server Error"
	errType := "https://svue-api.com/internal-error"

	switch status {
	case http.StatusBadRequest:
		title = "Bad Request"
		errType = "https://svue-api.com/validation-error"
	case http.StatusUnauthorized:
		title = "Unauthorized"
		errType = "https://svue-api.com/validation-error"
	}

	SendError(ctx, status, title, err.Error(), errType, ctx.FullPath())
}

// StatusFor maps the gateway's error taxonomy to response statuses.
// Upstream-reported and credential-input failures are the client's to fix;
// everything else (key configuration, transport, parsing, transformation,
// maintenance) is a server-side condition.
func StatusFor(err error) int {
	var svErr *models.StudentVueError

	switch {
	case errors.As(err, &svErr),
		errors.Is(err, models.ErrEmptyCredentials),
		errors.Is(err, models.ErrTokenLength),
		errors.Is(err, models.ErrTokenDecoding),
		errors.Is(err, models.ErrTokenAuth):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
