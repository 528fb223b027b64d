package router

import (
	"github.com/Zillorz/svue-api/src/config"
	"github.com/Zillorz/svue-api/src/controller"
	"github.com/Zillorz/svue-api/src/middleware"
	"github.com/Zillorz/svue-api/src/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Router struct {
	Logger  *logrus.Logger
	Config  config.GlobalConfig
	Service *service.Service
}

// SetUpRouter sets up the router for the gateway.
// It creates a new gin.Engine, initializes the controllers and routes,
// and returns the router and any error encountered.
func (r Router) SetUpRouter() (*gin.Engine, error) {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.ExposeHeaders = []string{"Set-Token"}
	router.Use(cors.New(corsConfig))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RequestID())

	ctrl := controller.NewController(r.Logger, r.Service)

	authed := router.Group("/", middleware.SessionAuth(r.Config.DistrictHost))
	authed.GET("/grades", ctrl.Grades)
	authed.GET("/documents", ctrl.Documents)
	authed.GET("/document", ctrl.Document)
	authed.GET("/student", ctrl.Student)
	authed.GET("/photo", ctrl.Photo)
	authed.GET("/school", ctrl.School)

	return router, nil
}
