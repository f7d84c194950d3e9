package cli

import (
	"time"

	"github.com/alexanderramin/nora/internal/cli/formatter"
	"github.com/alexanderramin/nora/internal/flow"
	"github.com/alexanderramin/nora/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Items   service.ItemService
	Drafts  service.DraftService
	Planner flow.Planner

	// Location is the user's timezone; plans and listings use its days.
	Location *time.Location
	// ConfigPath is where `config init` writes the sample file.
	ConfigPath string

	// SimulatedDelay is how long `plan --simulate` waits before it "hears"
	// the fixed transcript.
	SimulatedDelay time.Duration

	Now           func() time.Time
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	return now.In(a.location())
}

func (a *App) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "nora" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "nora",
		Short:         "Turn a description of your day into a time-blocked plan",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newItemsCmd(app),
		newExportCmd(app),
		newConfigCmd(app),
	)

	return root
}

// RenderError formats a command failure the way main prints it.
func RenderError(err error) string {
	return formatter.StyleRed.Render("Error: " + err.Error())
}
