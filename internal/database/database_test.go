package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slavemarket/internal/config"
	"slavemarket/internal/lease"
	"slavemarket/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustHours(keys ...string) []model.LeaseHour {
	out := make([]model.LeaseHour, len(keys))
	for i, k := range keys {
		out[i] = model.MustLeaseHour(k)
	}
	return out
}

func seed(t *testing.T, db *DB) (model.Master, model.Master, model.Slave) {
	t.Helper()
	ctx := context.Background()
	bob := model.Master{Name: "Господин Боб"}
	vip := model.Master{Name: "Рамси Сноу", VIP: true}
	fred := model.Slave{Name: "Уродливый Фред", PricePerHour: 20}
	require.NoError(t, db.CreateMaster(ctx, &bob))
	require.NoError(t, db.CreateMaster(ctx, &vip))
	require.NoError(t, db.CreateSlave(ctx, &fred))
	return bob, vip, fred
}

func TestReferenceData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bob, vip, fred := seed(t, db)

	assert.NotZero(t, bob.ID)
	assert.NotEqual(t, bob.ID, vip.ID)

	got, err := db.GetMasterByID(ctx, vip.ID)
	require.NoError(t, err)
	assert.Equal(t, vip, *got)

	slave, err := db.GetSlaveByID(ctx, fred.ID)
	require.NoError(t, err)
	assert.Equal(t, fred, *slave)

	explicit := model.Slave{ID: 77, Name: "Вонючка", PricePerHour: 10}
	require.NoError(t, db.CreateSlave(ctx, &explicit))
	slave, err = db.GetSlaveByID(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, "Вонючка", slave.Name)

	_, err = db.GetMasterByID(ctx, 999)
	assert.ErrorIs(t, err, lease.ErrNotFound)
	_, err = db.GetSlaveByID(ctx, 999)
	assert.ErrorIs(t, err, lease.ErrNotFound)

	assert.Error(t, db.CreateSlave(ctx, &model.Slave{Name: "x", PricePerHour: -1}))
}

func TestContracts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bob, vip, fred := seed(t, db)

	first := model.NewLeaseContract(bob, fred, 80, mustHours(
		"2017-01-01 02", "2017-01-01 00", "2017-01-01 01", "2017-01-01 03",
	))
	require.NoError(t, db.SaveContract(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := model.NewLeaseContract(vip, fred, 40, mustHours("2017-01-01 23", "2017-01-02 00"))
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, db.SaveContract(ctx, second))

	got, err := db.GetForSlave(ctx, fred.ID, "2017-01-01", "2017-01-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, bob, got[0].Master)
	assert.Equal(t, fred, got[0].Slave)
	assert.Equal(t, 80.0, got[0].Price)
	keys := make([]string, len(got[0].Hours))
	for i, h := range got[0].Hours {
		keys[i] = h.String()
	}
	assert.Equal(t, []string{"2017-01-01 02", "2017-01-01 00", "2017-01-01 01", "2017-01-01 03"}, keys)
	assert.True(t, got[1].Master.VIP)

	got, err = db.GetForSlave(ctx, fred.ID, "2017-01-02", "2017-01-02")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Len(t, got[0].Hours, 2)

	got, err = db.GetForSlave(ctx, fred.ID, "2017-01-03", "2017-01-04")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = db.GetForSlave(ctx, fred.ID+100, "2017-01-01", "2017-01-02")
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := db.ListContracts(ctx, "2016-12-01", "2017-01-31")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Error(t, db.SaveContract(ctx, first), "duplicate id must fail")
	assert.Error(t, db.SaveContract(ctx, nil))
}

func TestBackupService(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	logger := zerolog.New(io.Discard)
	dir := filepath.Join(t.TempDir(), "backups")

	svc := NewBackupService(db, config.BackupConfig{Enabled: true, StoragePath: dir, RetentionDays: 1}, time.Hour, &logger)
	path, err := svc.PerformBackup(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)

	old := filepath.Join(dir, "backup_old.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o600))
	past := time.Now().AddDate(0, 0, -3)
	require.NoError(t, os.Chtimes(old, past, past))

	svc.CleanupOldBackups()
	assert.NoFileExists(t, old)
	assert.FileExists(t, path)
}

func TestBackupService_StartCleansUpImmediately(t *testing.T) {
	db := newTestDB(t)
	logger := zerolog.New(io.Discard)
	dir := filepath.Join(t.TempDir(), "backups")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	stale := filepath.Join(dir, "backup_stale.db")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(stale, past, past))

	svc := NewBackupService(db, config.BackupConfig{Enabled: true, StoragePath: dir, RetentionDays: 2}, 24*time.Hour, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(stale)
		return os.IsNotExist(err)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the startup backup remains")
}
