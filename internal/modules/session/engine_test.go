package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/paragraf-app/core/internal/database"
	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/modules/unit"
	redisc "github.com/paragraf-app/core/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fillCall struct {
	projectID string
	from      int
	window    int
}

type fakePrefetcher struct{ calls []fillCall }

func (f *fakePrefetcher) Fill(ctx context.Context, projectID string, from, window int) error {
	f.calls = append(f.calls, fillCall{projectID, from, window})
	return nil
}

type fixture struct {
	engine    *Engine
	prefetch  *fakePrefetcher
	units     *unit.Service
	projectID string
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

	project := models.ProjectModel{Name: "sess-" + t.Name()}
	require.NoError(t, db.Create(&project).Error)
	for i, st := range statuses {
		u := models.UnitModel{ProjectID: project.ID, Seq: i, Original: "o", Status: st}
		if st == models.UnitApproved {
			u.Translation = "t"
		}
		require.NoError(t, db.Create(&u).Error)
	}

	mr := miniredis.RunT(t)
	rc := redisc.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	prefetch := &fakePrefetcher{}
	units := unit.NewService(db)
	engine := NewEngine(rc, units, prefetch, zap.NewNop(), 3)

	return &fixture{engine: engine, prefetch: prefetch, units: units, projectID: project.ID}
}

func TestOpenStartsAtFirstPending(t *testing.T) {
	f := newFixture(t, models.UnitApproved, models.UnitApproved, models.UnitPending, models.UnitPending)

	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Cursor)
	assert.False(t, view.Complete)
	assert.NotEmpty(t, view.ID)
	require.NotNil(t, view.Unit)
	assert.Equal(t, 2, view.Unit.Seq)

	require.Len(t, f.prefetch.calls, 1)
	assert.Equal(t, fillCall{f.projectID, 2, 3}, f.prefetch.calls[0])
}

func TestOpenCompleteProject(t *testing.T) {
	f := newFixture(t, models.UnitApproved, models.UnitApproved)

	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)
	assert.True(t, view.Complete)
	assert.Empty(t, view.ID)
	assert.Empty(t, f.prefetch.calls)
}

func TestOpenEmptyProject(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Open(context.Background(), f.projectID)
	require.ErrorIs(t, err, ErrProjectEmpty)
}

func TestAdvanceClampsAtEnd(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitPending)
	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)

	view, err = f.engine.Advance(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)

	view, err = f.engine.Advance(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)
}

func TestRetreatClampsAtZero(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitPending)
	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)

	view, err = f.engine.Retreat(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Cursor)
}

func TestJumpClamped(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitPending, models.UnitPending)
	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)

	view, err = f.engine.Jump(context.Background(), view.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Cursor)

	view, err = f.engine.Jump(context.Background(), view.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Cursor)
}

func TestNextPendingSkipsApproved(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitApproved, models.UnitApproved, models.UnitPending)
	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Cursor)

	view, err = f.engine.Advance(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)

	view, err = f.engine.NextPending(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Cursor)
}

func TestNextPendingStaysWhenNonePending(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitApproved)
	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)

	_, err = f.units.Approve(view.Unit.ID, "done")
	require.NoError(t, err)

	view, err = f.engine.Jump(context.Background(), view.ID, 1)
	require.NoError(t, err)

	view, err = f.engine.NextPending(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)
	assert.True(t, view.Complete)
}

func TestUnitApprovedAdvancesOnce(t *testing.T) {
	f := newFixture(t, models.UnitPending, models.UnitPending, models.UnitPending)
	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)
	sid := view.ID

	require.NoError(t, f.engine.UnitApproved(context.Background(), sid, f.projectID, 0))

	view, err = f.engine.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)

	// approval of a unit the cursor already left does not move it again
	require.NoError(t, f.engine.UnitApproved(context.Background(), sid, f.projectID, 0))
	view, err = f.engine.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)
}

func TestUnitApprovedLastUnitStays(t *testing.T) {
	f := newFixture(t, models.UnitApproved, models.UnitPending)
	view, err := f.engine.Open(context.Background(), f.projectID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)

	require.NoError(t, f.engine.UnitApproved(context.Background(), view.ID, f.projectID, 1))

	view, err = f.engine.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Cursor)
}

func TestGetExpiredSession(t *testing.T) {
	f := newFixture(t, models.UnitPending)
	_, err := f.engine.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
