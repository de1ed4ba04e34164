// internal/api/router.go
package api

import (
	"net/http"

	"audit-service/internal/api/handlers"
	"audit-service/internal/api/middleware"
	"audit-service/internal/api/responses"
	"audit-service/internal/core/audit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configura o roteador HTTP.
type Options struct {
	ServiceName string
	JWTSecret   string // vazio desativa a autenticação
	MaxUpload   int64
}

// NewRouter monta as rotas da API de auditoria.
func NewRouter(service audit.Service, opts Options, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	responses.InitLogger(logger)

	auditHandler := handlers.NewAuditHandler(service, opts.MaxUpload)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))

	apiV1 := router.Group("/api/v1")
	if opts.JWTSecret != "" {
		apiV1.Use(middleware.JWTAuth(opts.JWTSecret))
	}
	{
		apiV1.POST("/audit", auditHandler.HandleAudit)
		apiV1.POST("/audit/cte", auditHandler.HandleFreightCredit)
		apiV1.GET("/rules", auditHandler.HandleRules)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": opts.ServiceName})
	})
	return router
}
