package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/codoc/internal/validator"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a JSON or YAML scan result or cache file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validator.ValidateFile(args[0], cmd.OutOrStdout())
		},
	}
}
