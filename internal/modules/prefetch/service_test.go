package prefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/paragraf-app/core/internal/database"
	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/modules/project"
	"github.com/paragraf-app/core/internal/modules/unit"
	redisc "github.com/paragraf-app/core/internal/pkg/redis"
	"github.com/paragraf-app/core/internal/pkg/taskqueue"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeTranslator struct {
	mu        sync.Mutex
	calls     []string
	translate func(text string) (string, error)
}

func (f *fakeTranslator) Translate(ctx context.Context, text, instructions string, rules []string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.translate != nil {
		return f.translate(text)
	}
	return "draft:" + text, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	svc        *Service
	units      *unit.Service
	tasks      *taskqueue.Service
	translator *fakeTranslator
	projectID  string
	unitIDs    []string
}

func newFixture(t *testing.T, statuses ...models.UnitStatus) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps the whole test on one in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	p := models.ProjectModel{Name: "pf-" + t.Name(), Instructions: "stay close"}
	require.NoError(t, db.Create(&p).Error)

	var unitIDs []string
	for i, st := range statuses {
		u := models.UnitModel{ProjectID: p.ID, Seq: i, Original: fmt.Sprintf("para-%d", i), Status: st}
		if st == models.UnitApproved {
			u.Translation = "approved text"
		}
		require.NoError(t, db.Create(&u).Error)
		unitIDs = append(unitIDs, u.ID)
	}

	mr := miniredis.RunT(t)
	rc := redisc.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	tasks := taskqueue.NewService(rc)

	translator := &fakeTranslator{}
	units := unit.NewService(db)
	svc := NewService(units, project.NewService(db), translator, tasks, zap.NewNop())

	return &fixture{svc: svc, units: units, tasks: tasks, translator: translator, projectID: p.ID, unitIDs: unitIDs}
}

func (f *fixture) latestRun(t *testing.T) *taskqueue.Task {
	t.Helper()
	taskType := TaskTypeFill
	runs, _, err := f.tasks.List(context.Background(), 1, 10, &taskType, nil)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	return runs[0]
}

func TestFillDraftsPendingWindow(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitPending, models.UnitPending, models.UnitPending)

	require.NoError(t, f.svc.Fill(context.Background(), f.projectID, 0, 3))
	assert.Equal(t, 3, f.translator.callCount())

	for i := 0; i < 3; i++ {
		u, err := f.units.GetByID(f.unitIDs[i])
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("draft:para-%d", i), u.Translation)
		assert.Equal(t, models.UnitPending, u.Status)
	}

	// the unit beyond the window is untouched
	u, err := f.units.GetByID(f.unitIDs[3])
	require.NoError(t, err)
	assert.Empty(t, u.Translation)

	run := f.latestRun(t)
	assert.Equal(t, taskqueue.TaskCompleted, run.Status)
}

func TestFillSkipsApprovedAndDrafted(t *testing.T) {
	f := newFixture(t, models.UnitApproved, models.UnitPending, models.UnitPending)

	_, err := f.units.UpdateTranslation(f.unitIDs[1], "existing draft", models.UnitPending)
	require.NoError(t, err)

	require.NoError(t, f.svc.Fill(context.Background(), f.projectID, 0, 3))

	assert.Equal(t, 1, f.translator.callCount())

	u0, _ := f.units.GetByID(f.unitIDs[0])
	assert.Equal(t, "approved text", u0.Translation)
	u1, _ := f.units.GetByID(f.unitIDs[1])
	assert.Equal(t, "existing draft", u1.Translation)
	u2, _ := f.units.GetByID(f.unitIDs[2])
	assert.Equal(t, "draft:para-2", u2.Translation)
}

func TestFillDiscardsStaleDraftAfterApproval(t *testing.T) {
	f := newFixture(t, models.UnitPending)

	// the reviewer approves while the provider call is in flight
	f.translator.translate = func(text string) (string, error) {
		_, err := f.units.Approve(f.unitIDs[0], "human wins")
		require.NoError(t, err)
		return "machine draft", nil
	}

	require.NoError(t, f.svc.Fill(context.Background(), f.projectID, 0, 1))

	u, err := f.units.GetByID(f.unitIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "human wins", u.Translation)
	assert.Equal(t, models.UnitApproved, u.Status)

	run := f.latestRun(t)
	var results []unitResult
	require.NoError(t, json.Unmarshal(run.Result, &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Discarded)
	assert.False(t, results[0].Drafted)
}

func TestFillRecordsPerUnitFailures(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitPending)

	f.translator.translate = func(text string) (string, error) {
		if text == "para-0" {
			return "", fmt.Errorf("provider exploded")
		}
		return "ok:" + text, nil
	}

	require.NoError(t, f.svc.Fill(context.Background(), f.projectID, 0, 2))

	u0, _ := f.units.GetByID(f.unitIDs[0])
	assert.Empty(t, u0.Translation)
	u1, _ := f.units.GetByID(f.unitIDs[1])
	assert.Equal(t, "ok:para-1", u1.Translation)

	run := f.latestRun(t)
	assert.Equal(t, taskqueue.TaskCompleted, run.Status)

	var results []unitResult
	require.NoError(t, json.Unmarshal(run.Result, &results))
	require.Len(t, results, 2)

	bySeq := map[int]unitResult{}
	for _, r := range results {
		bySeq[r.Seq] = r
	}
	assert.Contains(t, bySeq[0].Error, "provider exploded")
	assert.True(t, bySeq[1].Drafted)
}

func TestFillDeduplicatesLiveWindow(t *testing.T) {
	f := newFixture(t, models.UnitPending)

	dedupKey := fmt.Sprintf("%s:%d:%d", f.projectID, 0, 1)
	_, created, err := f.tasks.Enqueue(context.Background(), TaskTypeFill, nil, dedupKey, f.projectID)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, f.svc.Fill(context.Background(), f.projectID, 0, 1))
	assert.Zero(t, f.translator.callCount())
}

func TestFillEmptyWindowCompletes(t *testing.T) {
	f := newFixture(t, models.UnitApproved)

	require.NoError(t, f.svc.Fill(context.Background(), f.projectID, 0, 3))
	assert.Zero(t, f.translator.callCount())

	run := f.latestRun(t)
	assert.Equal(t, taskqueue.TaskCompleted, run.Status)
}
