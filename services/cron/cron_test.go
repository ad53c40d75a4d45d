package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/database/dbtest"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPruneOrphanAssets(t *testing.T) {
	db := dbtest.Open(t)
	store := storagetest.NewMemoryStore()
	m := NewCronManager(db, store, time.Hour, zap.NewNop())

	old := time.Now().Add(-2 * time.Hour)
	fresh := time.Now().Add(-time.Minute)

	store.Put("logos/kept.jpg", old)
	store.Put("logos/orphan.jpg", old)
	store.Put("logos/new.jpg", fresh)
	store.Put("campus/kept.jpg", old)
	store.Put("campus/orphan.jpg", old)
	store.Put("syllabi/kept.pdf", old)
	store.Put("syllabi/orphan.pdf", old)
	store.Put("other/untouched.txt", old)

	uni := model.University{
		Name:         "Universidad de Ejemplo",
		Country:      "RD",
		City:         "Santo Domingo",
		LogoURL:      store.URL("logos/kept.jpg"),
		CampusImages: datatypes.JSONSlice[string]{store.URL("campus/kept.jpg"), "https://elsewhere.example.com/a.jpg"},
	}
	require.NoError(t, db.Create(&uni).Error)
	prog := model.Program{Name: "Medicina"}
	require.NoError(t, db.Create(&prog).Error)
	syllabus := store.URL("syllabi/kept.pdf")
	require.NoError(t, db.Create(&model.Offering{UniversityID: uni.ID, ProgramID: prog.ID, SyllabusURL: &syllabus}).Error)

	msg, meta, err := m.PruneOrphanAssets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"campus/kept.jpg",
		"logos/kept.jpg",
		"logos/new.jpg",
		"other/untouched.txt",
		"syllabi/kept.pdf",
	}, store.Keys())
	assert.Equal(t, "Deleted 3 of 7 stored objects", msg)
	assert.Equal(t, 3, meta["deleted"])
}

func TestCleanupOldData(t *testing.T) {
	db := dbtest.Open(t)
	m := NewCronManager(db, nil, 0, zap.NewNop())

	require.NoError(t, db.Create(&model.JWTTokenBlacklist{Token: "expired", ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&model.JWTTokenBlacklist{Token: "live", ExpiresAt: time.Now().Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&model.CronJobLog{
		JobName: "old", Status: model.JobStatusCompleted, StartedAt: time.Now(),
		CreatedAt: time.Now().Add(-CronLogRetention - time.Hour),
	}).Error)

	msg, meta, err := m.CleanupOldData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cleaned up 2 total records", msg)
	assert.Equal(t, int64(1), meta["tokens"])
	assert.Equal(t, int64(1), meta["cron_logs"])

	var tokens []model.JWTTokenBlacklist
	require.NoError(t, db.Find(&tokens).Error)
	require.Len(t, tokens, 1)
	assert.Equal(t, "live", tokens[0].Token)
}

func TestRun_RecordsOutcome(t *testing.T) {
	db := dbtest.Open(t)
	m := NewCronManager(db, nil, 0, zap.NewNop())

	ok := m.Run("ok_job", time.Second, func(ctx context.Context) (string, map[string]interface{}, error) {
		return "done", map[string]interface{}{"count": 2}, nil
	})
	failed := m.Run("bad_job", time.Second, func(ctx context.Context) (string, map[string]interface{}, error) {
		return "", nil, errors.New("boom")
	})

	var got model.CronJobLog
	require.NoError(t, db.First(&got, ok.ID).Error)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, "done", got.Message)
	assert.JSONEq(t, `{"count":2}`, string(got.Metadata))
	require.NotNil(t, got.CompletedAt)

	var gotFailed model.CronJobLog
	require.NoError(t, db.First(&gotFailed, failed.ID).Error)
	assert.Equal(t, model.JobStatusFailed, gotFailed.Status)
	assert.Equal(t, "boom", gotFailed.ErrorMsg)
}

func TestStartStop(t *testing.T) {
	db := dbtest.Open(t)
	m := NewCronManager(db, storagetest.NewMemoryStore(), 0, zap.NewNop())

	require.NoError(t, m.Start())
	assert.Len(t, m.cron.Entries(), 2)
	m.Stop()
}

func TestRunByName(t *testing.T) {
	db := dbtest.Open(t)

	withoutStore := NewCronManager(db, nil, 0, zap.NewNop())
	_, err := withoutStore.RunByName(JobPruneOrphanAssets)
	require.Error(t, err)

	_, err = withoutStore.RunByName("reindex")
	assert.ErrorIs(t, err, ErrUnknownJob)

	entry, err := withoutStore.RunByName(JobCleanupOldData)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, entry.Status)

	withStore := NewCronManager(db, storagetest.NewMemoryStore(), 0, zap.NewNop())
	entry, err = withStore.RunByName(JobPruneOrphanAssets)
	require.NoError(t, err)
	assert.Equal(t, "Deleted 0 of 0 stored objects", entry.Message)
}
