package cli

import (
	"github.com/spf13/cobra"
)

func newRulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Imprime o catálogo de regras efetivo em YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, catalogue, err := opts.bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			data, err := catalogue.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
