package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/nora/internal/cli/formatter"
	"github.com/alexanderramin/nora/internal/flow"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screenMode int

const (
	screenReview screenMode = iota
	// picking a block to change or delete
	screenEdit
	// changing one block's fields
	screenForm
)

const (
	fieldTitle = iota
	fieldStart
	fieldEnd
	fieldCount
)

// sessionDoneMsg reports the end of a retry or confirm started from the screen.
type sessionDoneMsg struct {
	op  string
	err error
}

type busyTickMsg struct{}

type reviewKeys struct {
	Up      key.Binding
	Down    key.Binding
	Accept  key.Binding
	Edit    key.Binding
	Retry   key.Binding
	Delete  key.Binding
	Select  key.Binding
	Done    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Cancel  key.Binding
	Discard key.Binding
}

func defaultReviewKeys() reviewKeys {
	return reviewKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Accept:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Delete:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit block")),
		Done:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab")),
		Cancel:  key.NewBinding(key.WithKeys("c", "q", "ctrl+c"), key.WithHelp("c", "cancel")),
		Discard: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard")),
	}
}

// reviewModel is the full-screen review of a generated plan. It drives the
// session directly; the session stays the source of truth for the blocks.
type reviewModel struct {
	ctx  context.Context
	sess *flow.Session
	keys reviewKeys

	mode   screenMode
	cursor int
	inputs [fieldCount]textinput.Model
	focus  int
	target string // block ID being edited in screenForm

	status    string
	statusErr bool
	frame     int
	width     int

	// fatal is set when the screen quit on a failure that cannot be retried.
	fatal error
}

func newReviewModel(ctx context.Context, sess *flow.Session) *reviewModel {
	m := &reviewModel{ctx: ctx, sess: sess, keys: defaultReviewKeys(), width: 80}
	placeholders := [fieldCount]string{"Title", "HH:mm", "HH:mm, blank for a reminder"}
	prompts := [fieldCount]string{"Title  ", "Start  ", "End    "}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = formatter.Dim(prompts[i])
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 120
		m.inputs[i] = ti
	}
	if st := sess.State(); st.Err != nil {
		m.setStatus(flow.Describe(st.Err).Message, true)
	}
	return m
}

func (m *reviewModel) Init() tea.Cmd { return nil }

func (m *reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case busyTickMsg:
		if !m.sess.State().Busy {
			return m, nil
		}
		m.frame++
		return m, busyTick()
	case sessionDoneMsg:
		return m.handleDone(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.cancel()
		}
		if m.sess.State().Busy {
			return m, nil
		}
		switch m.mode {
		case screenForm:
			return m.updateForm(msg)
		case screenEdit:
			return m.updateEdit(msg)
		default:
			return m.updateReview(msg)
		}
	}
	return m, nil
}

func (m *reviewModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sess.State()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.cancel()
	case st.Step == flow.StepCapture && key.Matches(msg, m.keys.Retry):
		m.setStatus("", false)
		return m, tea.Batch(m.run("retry", m.sess.Retry), busyTick())
	case st.Step != flow.StepReview:
	case key.Matches(msg, m.keys.Accept):
		m.setStatus("", false)
		return m, tea.Batch(m.run("confirm", m.sess.Confirm), busyTick())
	case key.Matches(msg, m.keys.Edit):
		if err := m.sess.Edit(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.mode = screenEdit
		m.setStatus("", false)
		m.clampCursor()
	}
	return m, nil
}

func (m *reviewModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	blocks := m.sess.State().Blocks
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(blocks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Delete):
		if len(blocks) == 0 {
			return m, nil
		}
		b := blocks[m.cursor]
		if err := m.sess.DeleteBlock(b.ID); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Deleted "+b.Title, false)
		m.clampCursor()
	case key.Matches(msg, m.keys.Select):
		if len(blocks) == 0 {
			return m, nil
		}
		return m, m.openForm(blocks[m.cursor])
	case key.Matches(msg, m.keys.Done):
		if err := m.sess.Done(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.mode = screenReview
	case key.Matches(msg, m.keys.Cancel):
		return m.cancel()
	}
	return m, nil
}

func (m *reviewModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Discard):
		m.closeForm()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.focusField((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case msg.Type == tea.KeyEnter:
		b, err := m.formBlock()
		if err == nil {
			err = m.sess.UpdateBlock(b)
		}
		if err != nil {
			m.setStatus(describeEdit(err), true)
			return m, nil
		}
		m.closeForm()
		m.setStatus("Updated "+b.Title, false)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *reviewModel) handleDone(msg sessionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		if msg.op == "confirm" {
			return m, tea.Quit
		}
		m.cursor = 0
		return m, nil
	}
	if m.sess.State().Ended {
		return m, tea.Quit
	}
	d := flow.Describe(msg.err)
	if !d.Retryable {
		m.fatal = msg.err
		m.sess.Cancel()
		return m, tea.Quit
	}
	m.setStatus(d.Message, true)
	return m, nil
}

func (m *reviewModel) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return sessionDoneMsg{op: op, err: fn(ctx)}
	}
}

func busyTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return busyTickMsg{} })
}

// cancel quits unless a save is already running; that one is seen through
// and its result reported.
func (m *reviewModel) cancel() (tea.Model, tea.Cmd) {
	if err := m.sess.Cancel(); errors.Is(err, flow.ErrBusy) {
		m.setStatus("Already saving; the plan can no longer be cancelled", true)
		return m, nil
	}
	return m, tea.Quit
}

func (m *reviewModel) openForm(b planner.DraftBlock) tea.Cmd {
	m.mode = screenForm
	m.target = b.ID
	m.inputs[fieldTitle].SetValue(b.Title)
	m.inputs[fieldStart].SetValue(planner.FormatClock(b.StartAt))
	end := ""
	if b.EndAt != nil {
		end = planner.FormatClock(*b.EndAt)
	}
	m.inputs[fieldEnd].SetValue(end)
	for i := range m.inputs {
		m.inputs[i].CursorEnd()
	}
	m.setStatus("", false)
	return m.focusField(fieldTitle)
}

func (m *reviewModel) closeForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.mode = screenEdit
	m.target = ""
}

func (m *reviewModel) focusField(i int) tea.Cmd {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.focus = i
	return m.inputs[i].Focus()
}

// formBlock builds the edited block from the form fields.
func (m *reviewModel) formBlock() (planner.DraftBlock, error) {
	ref := m.sess.Reference()
	b := planner.DraftBlock{ID: m.target, Title: strings.TrimSpace(m.inputs[fieldTitle].Value())}

	start, err := planner.ParseClock(strings.TrimSpace(m.inputs[fieldStart].Value()), ref)
	if err != nil {
		return b, err
	}
	b.StartAt = start

	if v := strings.TrimSpace(m.inputs[fieldEnd].Value()); v != "" {
		end, err := planner.ParseClock(v, ref)
		if err != nil {
			return b, err
		}
		b.EndAt = &end
	}
	return b, nil
}

func (m *reviewModel) clampCursor() {
	n := len(m.sess.State().Blocks)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *reviewModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *reviewModel) View() string {
	st := m.sess.State()
	var b strings.Builder

	title := formatter.PlanTitle(m.sess.Reference())
	switch {
	case st.Step == flow.StepCapture:
		b.WriteString(formatter.RenderBox(title, formatter.Dim("No plan yet.")))
	case m.mode == screenReview:
		b.WriteString(formatter.RenderBox(title, formatter.FormatPlanBody(st.Blocks)))
	default:
		b.WriteString(formatter.RenderBox(title+" · editing", m.renderEditList(st.Blocks)))
	}
	b.WriteString("\n")

	if m.mode == screenForm {
		for i := range m.inputs {
			b.WriteString("  " + m.inputs[i].View() + "\n")
		}
	}

	if st.Busy {
		frame := formatter.SpinnerFrame(m.frame)
		b.WriteString("  " + formatter.StylePurple.Render(frame) + " " + formatter.Dim(formatter.ActivityMessage(st.Activity)) + "\n")
	} else if m.status != "" {
		style := formatter.StyleGreen
		if m.statusErr {
			style = formatter.StyleRed
		}
		b.WriteString("  " + style.Render(m.status) + "\n")
	}

	b.WriteString(m.helpBar(st))
	return b.String()
}

func (m *reviewModel) renderEditList(blocks []planner.DraftBlock) string {
	if len(blocks) == 0 {
		return formatter.Dim("All blocks deleted. Press esc to return.")
	}
	lines := make([]string, len(blocks))
	for i, blk := range blocks {
		cursor := "  "
		line := formatter.FormatBlockLine(i+1, blk)
		if i == m.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		lines[i] = cursor + line
	}
	return strings.Join(lines, "\n")
}

func (m *reviewModel) shortHelp(st flow.State) []key.Binding {
	switch {
	case st.Busy:
		return []key.Binding{key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel"))}
	case st.Step == flow.StepCapture:
		return []key.Binding{m.keys.Retry, m.keys.Cancel}
	case m.mode == screenForm:
		return []key.Binding{m.keys.Next, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")), m.keys.Discard}
	case m.mode == screenEdit:
		return []key.Binding{m.keys.Select, m.keys.Delete, m.keys.Done}
	default:
		return []key.Binding{m.keys.Accept, m.keys.Edit, m.keys.Cancel}
	}
}

func (m *reviewModel) helpBar(st flow.State) string {
	var hints []string
	for _, k := range m.shortHelp(st) {
		hints = append(hints, formatter.Dim(k.Help().Key+": "+k.Help().Desc))
	}
	sep := lipgloss.NewStyle().Foreground(formatter.ColorDim).Render(strings.Repeat("─", max(m.width, 20)))
	return sep + "\n" + strings.Join(hints, "  ")
}
