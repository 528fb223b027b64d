package controller

import (
	"encoding/base64"
	"encoding/json"

	"github.com/Zillorz/svue-api/src/crypto"
	"github.com/Zillorz/svue-api/src/middleware"
	"github.com/Zillorz/svue-api/src/models"
	"github.com/Zillorz/svue-api/src/service"
	"github.com/Zillorz/svue-api/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Controller struct {
	Logger  *logrus.Logger
	Service *service.Service
}

func NewController(logger *logrus.Logger, service *service.Service) *Controller {
	return &Controller{
		Logger:  logger,
		Service: service,
	}
}

// refreshToken re-issues the session token when the upstream call mutated
// the record (cookie rotation). Nothing is stored server-side, so this
// header is the only carrier of session continuity.
func (c *Controller) refreshToken(ctx *gin.Context) error {
	rec, snapshot := middleware.Session(ctx)
	if rec.Equal(snapshot) {
		return nil
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return models.ErrUnknown
	}
	token, err := crypto.CreateToken(string(payload))
	if err != nil {
		return err
	}

	ctx.Header("Set-Token", base64.StdEncoding.EncodeToString(token))
	return nil
}

// reply emits the payload as JSON, refreshing the token first.
func (c *Controller) reply(ctx *gin.Context, status int, obj any) {
	if err := c.refreshToken(ctx); err != nil {
		utils.ReplyError(ctx, err)
		return
	}
	ctx.JSON(status, obj)
}
