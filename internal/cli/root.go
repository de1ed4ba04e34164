// Package cli holds the cobra command tree of the audit binary.
package cli

import (
	"fmt"
	"os"

	"audit-service/internal/core/rules"
	"audit-service/pkg/config"
	"audit-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	rulesFile string
	verbose   bool
}

// NewRootCmd monta a árvore de comandos.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "audit",
		Short: "Auditoria dos livros fiscais de entradas e saídas (ICMS, ICMS-ST, IPI)",
		Long: `Audita os livros de entradas e saídas linha a linha, apura os saldos de
ICMS, ICMS-ST e IPI, monta o resumo por CFOP e, opcionalmente, o crédito de
ICMS sobre fretes a partir dos CT-e.

Exemplos:
  audit serve
  audit audit --inbound entradas.csv --outbound saidas.csv --xlsx auditoria.xlsx
  audit rules > regras.yaml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "arquivo YAML com o catálogo de regras (padrão: catálogo embutido ou RULES_FILE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log em nível debug")

	root.AddCommand(
		newServeCmd(opts),
		newAuditCmd(opts),
		newRulesCmd(opts),
		newTokenCmd(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, logger and rule catalogue. --rules wins over RULES_FILE.
func (o *options) bootstrap() (*config.Config, *zap.Logger, *rules.Catalogue, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if o.rulesFile != "" {
		cfg.Audit.RulesFile = o.rulesFile
	}
	if o.verbose {
		cfg.App.LogLevel = "debug"
	}

	log, err := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("erro ao iniciar o logger: %w", err)
	}

	catalogue, err := rules.Load(cfg.Audit.RulesFile)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug("Catálogo de regras carregado", zap.String("rules_file", cfg.Audit.RulesFile))
	return cfg, log, catalogue, nil
}
