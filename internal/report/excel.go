package report

import (
	"fmt"
	"io"
	"time"

	"slavemarket/internal/model"

	"github.com/xuri/excelize/v2"
)

// ContractsSheet is the sheet name of the contracts export.
const ContractsSheet = "Контракты"

var contractColumns = []string{
	"ID", "Хозяин", "Раб", "Цена", "Часов", "Первый час", "Последний час", "Создан",
}

// Writer builds an xlsx workbook sheet by sheet.
type Writer struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// AddSheet adds a sheet and makes it current. The first call renames the
// default sheet.
func (w *Writer) AddSheet(name string) error {
	// Excel limit
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *Writer) WriteHeader(columns []string) error {
	if err := w.WriteRow(toRow(columns)); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	return nil
}

func (w *Writer) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, cell, &row); err != nil {
		return err
	}

	w.currentRow++
	return nil
}

func (w *Writer) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *Writer) Close() error {
	return w.file.Close()
}

// WriteContracts renders contracts as a single-sheet workbook into wr.
func WriteContracts(wr io.Writer, contracts []model.LeaseContract) error {
	w := NewWriter()
	defer w.Close()

	if err := w.AddSheet(ContractsSheet); err != nil {
		return err
	}
	if err := w.WriteHeader(contractColumns); err != nil {
		return err
	}

	for i := range contracts {
		if err := w.WriteRow(contractRow(&contracts[i])); err != nil {
			return fmt.Errorf("write contract %s: %w", contracts[i].ID, err)
		}
	}

	return w.Save(wr)
}

func contractRow(c *model.LeaseContract) []any {
	var first, last string
	if len(c.Hours) > 0 {
		first = c.FirstHour().String()
		last = c.LastHour().String()
	}
	created := ""
	if !c.CreatedAt.IsZero() {
		created = c.CreatedAt.Format(time.DateTime)
	}
	return []any{
		c.ID,
		fmt.Sprintf("#%d %s", c.Master.ID, c.Master.Name),
		fmt.Sprintf("#%d %s", c.Slave.ID, c.Slave.Name),
		c.Price,
		len(c.Hours),
		first,
		last,
		created,
	}
}

func toRow(values []string) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
