package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/nora/internal/cli/formatter"
	"github.com/alexanderramin/nora/internal/domain"
	"github.com/spf13/cobra"
)

// resolveItemID accepts a full ID or an unambiguous prefix of one, as shown
// in listings.
func resolveItemID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("item ID is required")
	}

	items, err := app.Items.List(ctx)
	if err != nil {
		return "", err
	}

	for _, it := range items {
		if it.ID == input {
			return it.ID, nil
		}
	}

	var matches []string
	for _, it := range items {
		if strings.HasPrefix(it.ID, strings.ToLower(input)) {
			matches = append(matches, it.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("item not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("item ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "List and manage saved schedule items",
	}

	cmd.AddCommand(
		newItemsListCmd(app),
		newItemsShowCmd(app),
		newItemsAddCmd(app),
		newItemsEditCmd(app),
		newItemsDeleteCmd(app),
	)

	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	day := newDayValue("")
	var upcoming bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items in start order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.now()

			if upcoming && day.IsSet() {
				return fmt.Errorf("--day and --upcoming cannot be combined")
			}

			var (
				header string
				items  []*domain.ScheduleItem
				err    error
			)
			switch {
			case upcoming:
				header = "Upcoming"
				items, err = app.Items.ListUpcoming(ctx, now)
			case day.IsSet():
				d := day.Resolve(now)
				header = formatter.DayLabel(d, now) + " · " + d.Format("Mon, Jan 2")
				items, err = app.Items.ListDay(ctx, d)
			default:
				header = "All items"
				items, err = app.Items.List(ctx)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(header))
			fmt.Fprintln(out, formatter.FormatItemList(items, now))
			return nil
		},
	}

	cmd.Flags().Var(day, "day", "Only items on this day: today, tomorrow or YYYY-MM-DD")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Only items that have not finished yet")

	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			it, err := app.Items.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatItemDetail(it, app.location()))
			return nil
		},
	}
}

func newItemsAddCmd(app *App) *cobra.Command {
	var (
		f     itemFields
		start string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item by hand",
		Long: `Add an event or reminder without going through a plan. An item with a
--duration is an event; without one it is a reminder.

With no flags on an interactive terminal, a form asks for the fields.`,
		Example: `  nora items add --title "Dentist" --start "2026-01-05 14:00" --duration 45m --mode in_person
  nora items add --title "Take pills" --start 08:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if cmd.Flags().NFlag() == 0 && app.interactive() {
				form := newItemForm(&f).WithInput(cmd.InOrStdin()).WithOutput(cmd.OutOrStdout())
				if err := form.Run(); err != nil {
					return err
				}
			} else {
				f.fromStartFlag(start)
			}

			it, err := f.toItem(app.now())
			if err != nil {
				return err
			}
			if err := app.Items.Create(ctx, it); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCreated(it, app.location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.title, "title", "", "Item title")
	cmd.Flags().StringVar(&start, "start", "", `Start as "YYYY-MM-DD HH:mm", or "HH:mm" for today`)
	cmd.Flags().StringVar(&f.duration, "duration", "", "Length such as 30m or 1h30m; omit for a reminder")
	cmd.Flags().StringVar(&f.mode, "mode", "", "in_person or online")
	cmd.Flags().StringVar(&f.location, "location", "", "Location or meeting link")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")

	return cmd
}

func newItemsEditCmd(app *App) *cobra.Command {
	var (
		in       itemFields
		start    string
		reminder bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a saved item",
		Long: `Change the fields of a saved item. Only the flags given are changed;
--mode none clears the mode and --reminder drops the end time.

With no flags on an interactive terminal, a form opens filled in with the
current values.`,
		Example: `  nora items edit 3f2a --start 15:30
  nora items edit 3f2a --start "2026-01-06 09:00" --duration 1h
  nora items edit 3f2a --reminder --mode none`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			if reminder && flags.Changed("duration") {
				return fmt.Errorf("--reminder and --duration cannot be combined")
			}

			id, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			old, err := app.Items.GetByID(ctx, id)
			if err != nil {
				return err
			}

			f := fieldsFromItem(old, app.location())
			if flags.NFlag() == 0 && app.interactive() {
				form := newItemForm(&f).WithInput(cmd.InOrStdin()).WithOutput(cmd.OutOrStdout())
				if err := form.Run(); err != nil {
					return err
				}
			} else {
				if flags.Changed("title") {
					f.title = in.title
				}
				if flags.Changed("start") {
					f.fromStartFlag(start)
				}
				if flags.Changed("duration") {
					f.duration = in.duration
				}
				if reminder {
					f.duration = ""
				}
				if flags.Changed("mode") {
					f.mode = in.mode
					if strings.EqualFold(f.mode, "none") {
						f.mode = ""
					}
				}
				if flags.Changed("location") {
					f.location = in.location
				}
				if flags.Changed("notes") {
					f.notes = in.notes
				}
			}

			it, err := f.toItem(app.now())
			if err != nil {
				return err
			}
			it.ID = old.ID
			it.CaptureID = old.CaptureID
			it.CreatedAt = old.CreatedAt
			if err := app.Items.Update(ctx, it); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatUpdated(it, app.location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.title, "title", "", "New title")
	cmd.Flags().StringVar(&start, "start", "", `New start as "YYYY-MM-DD HH:mm", or "HH:mm" to keep the day`)
	cmd.Flags().StringVar(&in.duration, "duration", "", "New length such as 30m or 1h30m")
	cmd.Flags().BoolVar(&reminder, "reminder", false, "Make the item a reminder with no end time")
	cmd.Flags().StringVar(&in.mode, "mode", "", "in_person, online or none")
	cmd.Flags().StringVar(&in.location, "location", "", "Location or meeting link; empty clears it")
	cmd.Flags().StringVar(&in.notes, "notes", "", "Notes; empty clears them")

	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			it, err := app.Items.GetByID(ctx, id)
			if err != nil {
				return err
			}

			if !yes && app.interactive() {
				confirmed := false
				form := wizardConfirm(fmt.Sprintf("Delete %q?", it.Title), &confirmed).
					WithInput(cmd.InOrStdin()).WithOutput(cmd.OutOrStdout())
				if err := form.Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Kept."))
					return nil
				}
			}

			if err := app.Items.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDeleted(it))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	return cmd
}
