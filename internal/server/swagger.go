package server

import (
	"github.com/dar44/reserva-municipal-sub001/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupSwagger serves the API docs under /swagger. host, when set, replaces
// the advertised host so "Try it out" hits the right deployment.
func SetupSwagger(r *gin.Engine, host string) {
	if host != "" {
		docs.SwaggerInfo.Host = host
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.PersistAuthorization(true),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
}
