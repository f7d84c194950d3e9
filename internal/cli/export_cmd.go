package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/nora/internal/cli/formatter"
	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved items for other tools",
	}
	cmd.AddCommand(newExportICSCmd(app))
	return cmd
}

func newExportICSCmd(app *App) *cobra.Command {
	day := newDayValue("")
	var out string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write saved items as an iCalendar file",
		Example: `  nora export ics --out ~/plans.ics
  nora export ics --day tomorrow > tomorrow.ics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.now()

			var (
				items []*domain.ScheduleItem
				err   error
			)
			if day.IsSet() {
				items, err = app.Items.ListDay(ctx, day.Resolve(now))
			} else {
				items, err = app.Items.List(ctx)
			}
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return export.WriteICS(cmd.OutOrStdout(), items, now)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := export.WriteICS(f, items, now); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render(
				fmt.Sprintf("✔ Exported %d items to %s", len(items), out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - or empty for stdout")
	cmd.Flags().Var(day, "day", "Only items on this day: today, tomorrow or YYYY-MM-DD")

	return cmd
}
