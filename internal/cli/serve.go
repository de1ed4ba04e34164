package cli

import (
	"log"

	"audit-service/internal/api"
	"audit-service/internal/core/audit"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia a API HTTP de auditoria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, catalogue, err := opts.bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.App.Env != "development" {
				gin.SetMode(gin.ReleaseMode)
			}

			auditService := audit.NewService(catalogue, logger)
			router := api.NewRouter(auditService, api.Options{
				ServiceName: cfg.App.Name,
				JWTSecret:   cfg.JWT.Secret,
				MaxUpload:   cfg.Server.MaxUploadBytes(),
			}, logger)
			router.MaxMultipartMemory = cfg.Server.MaxUploadBytes()

			logger.Info("Configuração carregada",
				zap.String("env", cfg.App.Env),
				zap.Bool("auth", cfg.JWT.Enabled()),
				zap.Int("max_upload_mb", cfg.Server.MaxUploadMB))
			log.Printf("🚀 Audit Service (Go) iniciado e escutando na porta %d", cfg.Server.Port)
			return router.Run(cfg.Server.Addr())
		},
	}
}
