package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockflow/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stockflow.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Workflow{}, &domain.RunLog{}))
	return db
}

func testWorkflow(name string) *domain.Workflow {
	wf := domain.NewWorkflow(name, domain.ScheduleSpec{
		Type:   domain.ScheduleWeekly,
		Hour:   9,
		Minute: 30,
		Days:   []time.Weekday{time.Monday, time.Thursday},
	}, 50)
	wf.NextRunAt = time.Now().UTC().Add(time.Hour)
	return wf
}

func TestWorkflowRepository_CreateAndGet(t *testing.T) {
	repo := NewWorkflowRepository(testDB(t))
	ctx := context.Background()

	wf := testWorkflow("weekly allocation")
	require.NoError(t, repo.Create(ctx, wf))

	got, err := repo.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly allocation", got.Name)
	assert.Equal(t, domain.ScheduleWeekly, got.ScheduleType)
	assert.Equal(t, "09:30", got.ScheduleTime)
	assert.Equal(t, []int{1, 4}, []int(got.ScheduleDays))
	assert.Equal(t, 50, got.AllocationPercent)
	assert.True(t, got.IsActive)
}

func TestWorkflowRepository_GetUnknownID(t *testing.T) {
	repo := NewWorkflowRepository(testDB(t))

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestWorkflowRepository_ListDue(t *testing.T) {
	repo := NewWorkflowRepository(testDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	due := testWorkflow("due")
	due.NextRunAt = now.Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, due))

	future := testWorkflow("future")
	future.NextRunAt = now.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, future))

	inactive := testWorkflow("inactive")
	inactive.NextRunAt = now.Add(-time.Minute)
	inactive.IsActive = false
	require.NoError(t, repo.Create(ctx, inactive))

	got, err := repo.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
}

func TestWorkflowRepository_UpdateRunSummaryAdvancesNextRun(t *testing.T) {
	repo := NewWorkflowRepository(testDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	wf := testWorkflow("summary")
	wf.NextRunAt = now.Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, wf))

	next := now.Add(24 * time.Hour)
	require.NoError(t, repo.UpdateRunSummary(ctx, wf.ID, now, domain.RunFailed, "1 succeeded, 2 failed", next))

	got, err := repo.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.LastRunStatus)
	assert.Equal(t, "1 succeeded, 2 failed", got.LastRunMessage)
	require.NotNil(t, got.LastRunAt)
	assert.WithinDuration(t, now, *got.LastRunAt, time.Second)
	assert.WithinDuration(t, next, got.NextRunAt, time.Second)

	// A failed run must still leave the workflow off the due list.
	due, err := repo.ListDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestWorkflowRepository_UpdateActiveRecomputesNextRun(t *testing.T) {
	repo := NewWorkflowRepository(testDB(t))
	ctx := context.Background()

	wf := testWorkflow("toggle")
	require.NoError(t, repo.Create(ctx, wf))

	require.NoError(t, repo.UpdateActive(ctx, wf.ID, false, nil))
	got, err := repo.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	reactivatedAt := time.Now().UTC().Add(30 * time.Minute)
	require.NoError(t, repo.UpdateActive(ctx, wf.ID, true, &reactivatedAt))
	got, err = repo.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.WithinDuration(t, reactivatedAt, got.NextRunAt, time.Second)
}

func TestWorkflowRepository_DeleteCascadesRunLogs(t *testing.T) {
	db := testDB(t)
	workflows := NewWorkflowRepository(db)
	logs := NewRunLogRepository(db)
	ctx := context.Background()

	wf := testWorkflow("doomed")
	require.NoError(t, workflows.Create(ctx, wf))
	require.NoError(t, logs.Create(ctx, domain.NewRunLog(wf.ID, time.Now().UTC())))

	require.NoError(t, workflows.Delete(ctx, wf.ID))

	_, err := workflows.GetByID(ctx, wf.ID)
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	remaining, err := logs.ListByWorkflow(ctx, wf.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRunLogRepository_FinalizeIsOneShot(t *testing.T) {
	db := testDB(t)
	workflows := NewWorkflowRepository(db)
	logs := NewRunLogRepository(db)
	ctx := context.Background()

	wf := testWorkflow("runs")
	require.NoError(t, workflows.Create(ctx, wf))

	run := domain.NewRunLog(wf.ID, time.Now().UTC())
	require.NoError(t, logs.Create(ctx, run))

	completed := time.Now().UTC()
	run.Status = domain.RunFailed
	run.CompletedAt = &completed
	run.OptionsUpdated = 2
	run.OptionsFailed = 1
	run.ErrorMessage = "gateway timeout"
	require.NoError(t, logs.Finalize(ctx, run))

	// The terminal transition already happened; a second finalize must not
	// rewrite the record.
	run.Status = domain.RunSuccess
	run.OptionsFailed = 0
	err := logs.Finalize(ctx, run)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := logs.ListByWorkflow(ctx, wf.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.RunFailed, got[0].Status)
	assert.Equal(t, 2, got[0].OptionsUpdated)
	assert.Equal(t, 1, got[0].OptionsFailed)
	assert.Equal(t, "gateway timeout", got[0].ErrorMessage)
	require.NotNil(t, got[0].CompletedAt)
}

func TestRunLogRepository_ListRecentOrdersNewestFirst(t *testing.T) {
	db := testDB(t)
	logs := NewRunLogRepository(db)
	ctx := context.Background()
	workflowID := uuid.New()

	old := domain.NewRunLog(workflowID, time.Now().UTC().Add(-time.Hour))
	recent := domain.NewRunLog(workflowID, time.Now().UTC())
	require.NoError(t, logs.Create(ctx, old))
	require.NoError(t, logs.Create(ctx, recent))

	got, err := logs.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, recent.ID, got[0].ID)
}

func TestStockRepository_ReadsInventoryTables(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(`CREATE TABLE inventory_summary (sku TEXT PRIMARY KEY, current_stock INTEGER NOT NULL)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE naver_product_options (
		origin_product_no INTEGER NOT NULL,
		option_combination_id INTEGER NOT NULL,
		internal_sku TEXT,
		seller_management_code TEXT,
		stock_quantity INTEGER NOT NULL
	)`).Error)

	require.NoError(t, db.Exec(`INSERT INTO inventory_summary VALUES ('SKU-A', 100), ('SKU-B', 25)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO naver_product_options VALUES
		(1000, 1, 'SKU-A', 'LEGACY-A', 10),
		(1000, 2, '', 'SKU-B', 5),
		(2000, 3, NULL, NULL, 7)`).Error)

	repo := NewStockRepository(db)

	stock, err := repo.WarehouseStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SKU-A": 100, "SKU-B": 25}, stock)

	options, err := repo.ListingOptions(ctx)
	require.NoError(t, err)
	require.Len(t, options, 3)
	// internal_sku wins, seller code fills the gap, fully unmapped stays empty.
	assert.Equal(t, "SKU-A", options[0].SKU)
	assert.Equal(t, "SKU-B", options[1].SKU)
	assert.Equal(t, "", options[2].SKU)
	assert.Equal(t, int64(1000), options[0].ListingID)
	assert.Equal(t, int64(2), options[1].OptionID)
	assert.Equal(t, 7, options[2].Quantity)
}
