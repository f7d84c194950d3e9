package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/nora/internal/cli/formatter"
	"github.com/alexanderramin/nora/internal/flow"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/alexanderramin/nora/internal/transcribe"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type planOptions struct {
	day      *dayValue
	simulate bool
	plain    bool
	yes      bool
}

func newPlanCmd(app *App) *cobra.Command {
	opts := &planOptions{day: newDayValue("tomorrow")}

	cmd := &cobra.Command{
		Use:   "plan [text...]",
		Short: "Turn a description of your day into schedule blocks",
		Long: `Describe your day in plain language and review the generated blocks
before they are saved.

The description comes from the arguments, from piped input, or from the
simulated recorder with --simulate. Without any of these an interactive
terminal asks for it.`,
		Example: `  nora plan "Gym 7-8, standup at 9:30, dentist 2-3pm"
  echo "Lunch 12-1, call mom at 6" | nora plan --date today --yes
  nora plan --simulate --plain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, app, opts, args)
		},
	}

	cmd.Flags().Var(opts.day, "date", "Day to plan: today, tomorrow or YYYY-MM-DD")
	cmd.Flags().BoolVar(&opts.simulate, "simulate", false, "Use the simulated recorder's fixed transcript")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Use line prompts instead of the review screen")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Save the generated plan without reviewing it")

	return cmd
}

// planRun is one invocation of `nora plan`.
type planRun struct {
	app    *App
	opts   *planOptions
	out    io.Writer
	in     io.Reader
	prompt *prompter
	sess   *flow.Session

	spinner *formatter.Spinner
}

func runPlan(cmd *cobra.Command, app *App, opts *planOptions, args []string) error {
	if app.Planner == nil {
		return errors.New("planner is not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r := &planRun{
		app:  app,
		opts: opts,
		out:  cmd.OutOrStdout(),
		in:   cmd.InOrStdin(),
	}
	r.prompt = newPrompter(r.in, r.out)

	tr, err := r.transcriber(args)
	if err != nil {
		return err
	}
	source := transcribe.SourceOf(tr)
	persister := flow.PersisterFunc(func(ctx context.Context, transcript string, blocks []planner.DraftBlock) error {
		_, err := app.Drafts.PersistDraft(ctx, transcript, source, blocks)
		return err
	})

	ref := opts.day.Resolve(app.now())
	r.sess = flow.NewSession(app.Planner, persister, ref,
		flow.WithTranscriber(tr),
		flow.WithOnChange(r.onChange),
	)

	if done, err := r.capture(ctx); done || err != nil {
		return err
	}
	if st := r.sess.State(); len(args) == 0 && st.Transcript != "" {
		fmt.Fprintln(r.out, formatter.FormatTranscript(st.Transcript))
	}

	switch {
	case opts.yes:
		fmt.Fprintln(r.out, formatter.FormatPlan(r.sess.State().Blocks, ref))
		if err := r.confirm(ctx); err != nil {
			return failure(err)
		}
		return nil
	case r.useScreen():
		return r.runScreen(ctx)
	default:
		return r.reviewLoop(ctx)
	}
}

// transcriber picks where the description comes from.
func (r *planRun) transcriber(args []string) (flow.Transcriber, error) {
	switch {
	case len(args) > 0:
		return transcribe.Text{Value: strings.Join(args, " ")}, nil
	case r.opts.simulate:
		return transcribe.Simulated{Delay: r.app.SimulatedDelay}, nil
	case !r.app.interactive():
		if !r.opts.yes {
			return nil, errors.New("reading the description from stdin needs --yes, since there is no terminal to review on")
		}
		return transcribe.Reader{R: r.in}, nil
	}
	text, ok := r.prompt.ask("Describe your day")
	if !ok {
		return nil, transcribe.ErrNoInput
	}
	return transcribe.Text{Value: text}, nil
}

func (r *planRun) useScreen() bool {
	return r.app.interactive() && !r.opts.plain
}

// capture runs the first generation and, in line mode, the retry prompt.
// done is true when the session ended here. The review screen offers its
// own retry, so a retryable failure is left for it.
func (r *planRun) capture(ctx context.Context) (done bool, err error) {
	err = r.busy(ctx, r.sess.Capture)
	for err != nil {
		if ctx.Err() != nil {
			r.sess.Cancel()
			return true, ctx.Err()
		}
		d := flow.Describe(err)
		if !d.Retryable || r.opts.yes {
			r.sess.Cancel()
			return true, failure(err)
		}

		if r.useScreen() {
			return false, nil
		}

		fmt.Fprintln(r.out, formatter.FormatFailure(d))
		answer, ok := r.prompt.ask("[r]etry [c]ancel")
		if !ok || choice(answer) != "r" {
			r.cancel()
			return true, nil
		}
		err = r.busy(ctx, r.sess.Retry)
	}
	return false, nil
}

func (r *planRun) reviewLoop(ctx context.Context) error {
	for {
		st := r.sess.State()
		fmt.Fprintln(r.out, formatter.FormatPlan(st.Blocks, r.sess.Reference()))

		answer, ok := r.prompt.ask("[a]ccept [e]dit [c]ancel")
		if !ok {
			r.cancel()
			return nil
		}
		switch choice(answer) {
		case "a":
			err := r.confirm(ctx)
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(r.out, formatter.FormatFailure(flow.Describe(err)))
		case "e":
			if err := r.sess.Edit(); err != nil {
				return err
			}
			if !r.editLoop() {
				r.cancel()
				return nil
			}
			if err := r.sess.Done(); err != nil {
				return err
			}
		case "c", "q":
			r.cancel()
			return nil
		default:
			fmt.Fprintln(r.out, formatter.Dim("Choose a, e or c."))
		}
	}
}

// editLoop runs until "done". It returns false if input ran out.
func (r *planRun) editLoop() bool {
	for {
		fmt.Fprintln(r.out, formatter.FormatPlanBody(r.sess.State().Blocks))
		answer, ok := r.prompt.ask("<n> edit, d <n> delete, done")
		if !ok {
			return false
		}
		fields := strings.Fields(strings.ToLower(answer))
		switch {
		case len(fields) == 0:
		case fields[0] == "done" || fields[0] == "q":
			return true
		case (fields[0] == "d" || fields[0] == "delete") && len(fields) == 2:
			blk, err := r.blockAt(fields[1])
			if err == nil {
				err = r.sess.DeleteBlock(blk.ID)
			}
			r.report(err, "Deleted "+blk.Title)
		case len(fields) == 1:
			blk, err := r.blockAt(fields[0])
			if err != nil {
				r.report(err, "")
				continue
			}
			edited, ok, err := r.editBlock(blk)
			if !ok {
				return false
			}
			if err == nil {
				err = r.sess.UpdateBlock(edited)
			}
			r.report(err, "Updated "+edited.Title)
		default:
			fmt.Fprintln(r.out, formatter.Dim("Type a block number, d <n>, or done."))
		}
	}
}

func (r *planRun) blockAt(arg string) (planner.DraftBlock, error) {
	blocks := r.sess.State().Blocks
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(blocks) {
		return planner.DraftBlock{}, fmt.Errorf("no block %q (1-%d)", arg, len(blocks))
	}
	return blocks[n-1], nil
}

// editBlock asks for each field; a blank answer keeps the current value
// and "-" as the end turns the block into a reminder.
func (r *planRun) editBlock(b planner.DraftBlock) (planner.DraftBlock, bool, error) {
	ref := r.sess.Reference()

	title, ok := r.prompt.ask(fmt.Sprintf("Title [%s]", b.Title))
	if !ok {
		return b, false, nil
	}
	if title != "" {
		b.Title = title
	}

	start, ok := r.prompt.ask(fmt.Sprintf("Start [%s]", planner.FormatClock(b.StartAt)))
	if !ok {
		return b, false, nil
	}
	if start != "" {
		t, err := planner.ParseClock(start, ref)
		if err != nil {
			return b, true, err
		}
		b.StartAt = t
	}

	current := "none"
	if b.EndAt != nil {
		current = planner.FormatClock(*b.EndAt)
	}
	end, ok := r.prompt.ask(fmt.Sprintf("End [%s] (- for none)", current))
	if !ok {
		return b, false, nil
	}
	switch end {
	case "":
	case "-":
		b.EndAt = nil
	default:
		t, err := planner.ParseClock(end, ref)
		if err != nil {
			return b, true, err
		}
		b.EndAt = &t
	}
	return b, true, nil
}

func (r *planRun) report(err error, success string) {
	if err != nil {
		fmt.Fprintln(r.out, formatter.StyleRed.Render("✖ "+describeEdit(err)))
		return
	}
	fmt.Fprintln(r.out, formatter.StyleGreen.Render("✔ "+success))
}

func (r *planRun) confirm(ctx context.Context) error {
	if err := r.busy(ctx, r.sess.Confirm); err != nil {
		return err
	}
	fmt.Fprintln(r.out, formatter.FormatSaved(len(r.sess.State().Blocks)))
	return nil
}

func (r *planRun) cancel() {
	r.sess.Cancel()
	fmt.Fprintln(r.out, formatter.Dim("Cancelled. Nothing was saved."))
}

func (r *planRun) runScreen(ctx context.Context) error {
	m := newReviewModel(ctx, r.sess)
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(r.in), tea.WithOutput(r.out)).Run()
	if err != nil {
		r.sess.Cancel()
		return fmt.Errorf("review screen: %w", err)
	}
	st := r.sess.State()
	switch {
	case st.Confirmed:
		fmt.Fprintln(r.out, formatter.FormatSaved(len(st.Blocks)))
	case !st.Ended:
		r.cancel()
	default:
		fmt.Fprintln(r.out, formatter.Dim("Cancelled. Nothing was saved."))
	}
	if rm, ok := final.(*reviewModel); ok && rm.fatal != nil {
		return failure(rm.fatal)
	}
	return nil
}

// busy runs fn with a spinner on interactive terminals.
func (r *planRun) busy(ctx context.Context, fn func(context.Context) error) error {
	if !r.app.interactive() {
		return fn(ctx)
	}
	r.spinner = formatter.NewSpinner(r.out, formatter.ActivityMessage(flow.ActivityGenerating))
	r.spinner.Start()
	defer func() {
		r.spinner.Stop()
		r.spinner = nil
	}()
	return fn(ctx)
}

func (r *planRun) onChange(st flow.State) {
	if r.spinner != nil && st.Busy {
		r.spinner.SetMessage(formatter.ActivityMessage(st.Activity))
	}
}

// failureError carries a described failure to main, which prints only the
// message.
type failureError struct {
	desc flow.Description
	err  error
}

func failure(err error) error {
	return &failureError{desc: flow.Describe(err), err: err}
}

func (e *failureError) Error() string { return e.desc.Message }

func (e *failureError) Unwrap() error { return e.err }

func describeEdit(err error) string {
	switch {
	case errors.Is(err, flow.ErrEmptyTitle):
		return "Title cannot be empty"
	case errors.Is(err, planner.ErrInvalidTimeFormat):
		return "Use HH:mm, e.g. 07:30"
	case errors.Is(err, planner.ErrInvalidTimeRange):
		return "End must be after start"
	}
	return err.Error()
}
