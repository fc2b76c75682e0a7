package unit

import (
	"testing"

	"github.com/paragraf-app/core/internal/database"
	"github.com/paragraf-app/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedProject(t *testing.T, db *gorm.DB, statuses ...models.UnitStatus) (string, []models.UnitModel) {
	t.Helper()
	project := models.ProjectModel{Name: "test-" + t.Name()}
	require.NoError(t, db.Create(&project).Error)

	units := make([]models.UnitModel, len(statuses))
	for i, st := range statuses {
		units[i] = models.UnitModel{
			ProjectID: project.ID,
			Seq:       i,
			Original:  "original",
			Status:    st,
		}
		if st == models.UnitApproved {
			units[i].Translation = "done"
		}
	}
	require.NoError(t, db.Create(&units).Error)
	return project.ID, units
}

func TestListByProjectOrdersBySeq(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	projectID, _ := seedProject(t, db, models.UnitPending, models.UnitPending, models.UnitPending)

	units, err := svc.ListByProject(projectID)
	require.NoError(t, err)
	require.Len(t, units, 3)
	for i, u := range units {
		assert.Equal(t, i, u.Seq)
	}
}

func TestSaveDraftIfPendingStoresDraft(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	_, units := seedProject(t, db, models.UnitPending)

	ok, err := svc.SaveDraftIfPending(units[0].ID, "draft text")
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := svc.GetByID(units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "draft text", u.Translation)
	assert.Equal(t, models.UnitPending, u.Status)
}

func TestSaveDraftIfPendingRejectedAfterApprove(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	_, units := seedProject(t, db, models.UnitPending)

	_, err := svc.Approve(units[0].ID, "human translation")
	require.NoError(t, err)

	ok, err := svc.SaveDraftIfPending(units[0].ID, "stale machine draft")
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := svc.GetByID(units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "human translation", u.Translation)
	assert.Equal(t, models.UnitApproved, u.Status)
}

func TestApproveSetsStatusAndText(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	_, units := seedProject(t, db, models.UnitPending)

	_, err := svc.Approve(units[0].ID, "final")
	require.NoError(t, err)

	u, err := svc.GetByID(units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitApproved, u.Status)
	assert.Equal(t, "final", u.Translation)
	assert.Equal(t, "original", u.Original)
}

func TestReopenKeepsTranslation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	_, units := seedProject(t, db, models.UnitApproved)

	_, err := svc.Reopen(units[0].ID)
	require.NoError(t, err)

	u, err := svc.GetByID(units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitPending, u.Status)
	assert.Equal(t, "done", u.Translation)
}

func TestFirstPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	projectID, _ := seedProject(t, db, models.UnitApproved, models.UnitPending, models.UnitPending)

	u, err := svc.FirstPending(projectID)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 1, u.Seq)
}

func TestFirstPendingAllApproved(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	projectID, _ := seedProject(t, db, models.UnitApproved, models.UnitApproved)

	u, err := svc.FirstPending(projectID)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFirstPendingFromSkipsEarlier(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	projectID, _ := seedProject(t, db,
		models.UnitPending, models.UnitApproved, models.UnitPending)

	u, err := svc.FirstPendingFrom(projectID, 1)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 2, u.Seq)
}

func TestCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	projectID, _ := seedProject(t, db,
		models.UnitApproved, models.UnitPending, models.UnitApproved)

	total, err := svc.CountTotal(projectID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	approved, err := svc.CountApproved(projectID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, approved)
}

func TestGetBySeq(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	projectID, _ := seedProject(t, db, models.UnitPending, models.UnitPending)

	u, err := svc.GetBySeq(projectID, 1)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 1, u.Seq)

	missing, err := svc.GetBySeq(projectID, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
