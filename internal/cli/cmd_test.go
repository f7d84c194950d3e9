package cli

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/nora/internal/db"
	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/alexanderramin/nora/internal/repository"
	"github.com/alexanderramin/nora/internal/service"
	"github.com/alexanderramin/nora/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testNow is the evening before testutil.Day, so "tomorrow" is the
// fixtures' day.
var testNow = time.Date(2025, 12, 26, 20, 0, 0, 0, time.UTC)

type testEnv struct {
	app *App
	db  *sql.DB
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T, gw planner.Gateway) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)

	app := &App{
		Items:      service.NewItemService(repository.NewSQLiteScheduleItemRepo(database)),
		Drafts:     service.NewDraftService(db.NewSQLiteUnitOfWork(database)),
		Planner:    planner.NewGenerator(gw),
		Location:   time.UTC,
		ConfigPath: t.TempDir() + "/config.yaml",
		Now:        func() time.Time { return testNow },
	}
	return &testEnv{app: app, db: database}
}

func sampleApp(t *testing.T) *testEnv {
	return testApp(t, planner.StaticGateway{Response: planner.SampleDayResponse})
}

// executeCmd runs a cobra command with stdin and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func (e *testEnv) items(t *testing.T) []*domain.ScheduleItem {
	t.Helper()
	items, err := e.app.Items.List(context.Background())
	require.NoError(t, err)
	return items
}

func (e *testEnv) captures(t *testing.T) []*domain.Capture {
	t.Helper()
	captures, err := repository.NewSQLiteCaptureRepo(e.db).ListRecent(context.Background(), 10)
	require.NoError(t, err)
	return captures
}

func (e *testEnv) seed(t *testing.T, items ...*domain.ScheduleItem) {
	t.Helper()
	for _, it := range items {
		require.NoError(t, e.app.Items.Create(context.Background(), it))
	}
}

func titles(items []*domain.ScheduleItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

// sequenceGateway answers with each reply in turn, repeating the last.
type sequenceGateway struct {
	mu      sync.Mutex
	replies []gatewayReply
	calls   int
}

type gatewayReply struct {
	body string
	err  error
}

func (g *sequenceGateway) GeneratePlan(context.Context, string, time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.replies[min(g.calls, len(g.replies)-1)]
	g.calls++
	return r.body, r.err
}
