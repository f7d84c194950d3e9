package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/nora/internal/cli/formatter"
	"github.com/alexanderramin/nora/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a sample config file",
			RunE: func(cmd *cobra.Command, args []string) error {
				if app.ConfigPath == "" {
					return errors.New("no config path")
				}
				if err := config.WriteSample(app.ConfigPath); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("✔ Wrote "+app.ConfigPath))
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Set llm.api_key there, or export NORA_LLM_API_KEY."))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), app.ConfigPath)
			},
		},
	)

	return cmd
}
