package cli

import (
	"errors"
	"fmt"
	"time"

	"audit-service/internal/api/middleware"
	"audit-service/pkg/config"

	"github.com/spf13/cobra"
)

var errSemSegredo = errors.New("JWT_SECRET não configurado")

// newTokenCmd emite tokens para a API quando a autenticação está ligada.
func newTokenCmd() *cobra.Command {
	var (
		username string
		roles    []string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Gera um token de acesso para a API (HS256, JWT_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.JWT.Enabled() {
				return errSemSegredo
			}
			token, err := middleware.IssueToken(cfg.JWT.Secret, username, roles, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "usuário gravado no token")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "perfis do usuário")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "validade do token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
