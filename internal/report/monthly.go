package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slavemarket/internal/model"

	"github.com/rs/zerolog"
)

// MonthNames in Russian for report file names.
var MonthNames = map[time.Month]string{
	time.January:   "Январь",
	time.February:  "Февраль",
	time.March:     "Март",
	time.April:     "Апрель",
	time.May:       "Май",
	time.June:      "Июнь",
	time.July:      "Июль",
	time.August:    "Август",
	time.September: "Сентябрь",
	time.October:   "Октябрь",
	time.November:  "Ноябрь",
	time.December:  "Декабрь",
}

// MonthFilename returns a name like "Январь_2017.xlsx".
func MonthFilename(t time.Time) string {
	return fmt.Sprintf("%s_%d.xlsx", MonthNames[t.Month()], t.Year())
}

// ContractLister lists stored contracts having hours within [from, to].
type ContractLister interface {
	Contracts(ctx context.Context, from, to string) ([]model.LeaseContract, error)
}

// MonthlyExporter writes the previous month's contracts to Dir on the first
// day of every month.
type MonthlyExporter struct {
	contracts ContractLister
	dir       string
	loc       *time.Location
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewMonthlyExporter(contracts ContractLister, dir string, loc *time.Location, logger *zerolog.Logger) *MonthlyExporter {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &MonthlyExporter{
		contracts: contracts,
		dir:       dir,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Start blocks until ctx is done.
func (e *MonthlyExporter) Start(ctx context.Context) {
	nextRun := e.nextFirstOfMonth()
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	e.logger.Info().Time("time", nextRun).Msg("Next monthly report scheduled")

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			prev := e.now().In(e.loc).AddDate(0, -1, 0)
			if _, err := e.ExportMonth(ctx, prev); err != nil {
				e.logger.Error().Err(err).Msg("Monthly report failed")
			}

			nextRun = e.nextFirstOfMonth()
			timer.Reset(time.Until(nextRun))
			e.logger.Info().Time("time", nextRun).Msg("Next monthly report scheduled")
		}
	}
}

// nextFirstOfMonth returns 00:01 on the first day of next month.
func (e *MonthlyExporter) nextFirstOfMonth() time.Time {
	now := e.now().In(e.loc)
	return time.Date(now.Year(), now.Month()+1, 1, 0, 1, 0, 0, e.loc)
}

// ExportMonth writes contracts of the calendar month containing month and
// returns the file path.
func (e *MonthlyExporter) ExportMonth(ctx context.Context, month time.Time) (string, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, e.loc)
	last := first.AddDate(0, 1, -1)

	contracts, err := e.contracts.Contracts(ctx, first.Format(time.DateOnly), last.Format(time.DateOnly))
	if err != nil {
		return "", fmt.Errorf("list contracts: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(e.dir, MonthFilename(first))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := WriteContracts(f, contracts); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}

	e.logger.Info().Str("path", path).Int("contracts", len(contracts)).Msg("Monthly report written")
	return path, nil
}
