package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"slavemarket/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) Contracts(ctx context.Context, from, to string) ([]model.LeaseContract, error) {
	args := m.Called(ctx, from, to)
	contracts, _ := args.Get(0).([]model.LeaseContract)
	return contracts, args.Error(1)
}

func TestMonthFilename(t *testing.T) {
	assert.Equal(t, "Январь_2017.xlsx", MonthFilename(time.Date(2017, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Декабрь_2016.xlsx", MonthFilename(time.Date(2016, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestMonthlyExporter_ExportMonth(t *testing.T) {
	lister := new(mockLister)
	lister.On("Contracts", mock.Anything, "2017-02-01", "2017-02-28").
		Return([]model.LeaseContract{{ID: "a"}, {ID: "b"}}, nil)

	dir := filepath.Join(t.TempDir(), "reports")
	exporter := NewMonthlyExporter(lister, dir, time.UTC, nil)

	path, err := exporter.ExportMonth(context.Background(), time.Date(2017, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Февраль_2017.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(ContractsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	lister.AssertExpectations(t)
}

func TestMonthlyExporter_ListError(t *testing.T) {
	lister := new(mockLister)
	lister.On("Contracts", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db closed"))

	exporter := NewMonthlyExporter(lister, t.TempDir(), nil, nil)
	_, err := exporter.ExportMonth(context.Background(), time.Now())
	assert.ErrorContains(t, err, "db closed")
}

func TestMonthlyExporter_NextRun(t *testing.T) {
	exporter := NewMonthlyExporter(new(mockLister), t.TempDir(), time.UTC, nil)
	exporter.now = func() time.Time { return time.Date(2017, 12, 31, 23, 59, 0, 0, time.UTC) }

	assert.Equal(t, time.Date(2018, 1, 1, 0, 1, 0, 0, time.UTC), exporter.nextFirstOfMonth())
}

func TestMonthlyExporter_StartStops(t *testing.T) {
	exporter := NewMonthlyExporter(new(mockLister), t.TempDir(), time.UTC, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		exporter.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("exporter did not stop")
	}
}
