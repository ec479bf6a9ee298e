// Package sheets maintains the teacher-facing results workbook: one
// row per completed attempt, with columns the teacher fills in by hand
// (manual_score_total, teacher_comment) and a notified flag the bot
// sets after delivering the manual score back to the student.
package sheets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// BaseHeader is the fixed column prefix. Free-text questions add their
// own "<question id>_raw" columns after it, and extra teacher-added
// columns are preserved.
var BaseHeader = []string{
	"timestamp", "student_name", "group", "test_id", "test_title",
	"score", "max_score", "auto_score", "manual_needed",
	"manual_score_total", "teacher_comment", "all_answers_json",
	"telegram_id", "notified",
}

// ResultRow is one appended attempt.
type ResultRow struct {
	Timestamp    time.Time
	StudentName  string
	StudentGroup string
	TestID       string
	TestTitle    string
	Score        float64
	MaxScore     float64
	AutoScore    float64
	ManualNeeded bool
	AllAnswers   map[string]string
	// Raw free-text answers, keyed by question id; each gets its own
	// column so teachers can read them without unpacking JSON.
	FreeTextRaw map[string]string
	TelegramID  int64
}

// PendingRow is a row whose manual score the teacher filled in but the
// student has not been notified about yet.
type PendingRow struct {
	Row         int // 1-based sheet row
	TelegramID  int64
	TestID      string
	TestTitle   string
	StudentName string
	ManualScore float64
}

// Workbook is a results spreadsheet on disk. Every operation reopens
// the file so edits the teacher makes between calls are picked up.
type Workbook struct {
	path string
	mu   sync.Mutex
}

// Open prepares a workbook at path, creating it with the base header
// when it does not exist yet.
func Open(path string) (*Workbook, error) {
	w := &Workbook{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		f := excelize.NewFile()
		defer f.Close()
		if err := setHeader(f, BaseHeader); err != nil {
			return nil, err
		}
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("failed to create results workbook: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return w, nil
}

// Append writes one result row, extending the header with raw-answer
// columns as needed.
func (w *Workbook) Append(row ResultRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to open results workbook: %w", err)
	}
	defer f.Close()

	header, err := ensureHeader(f, row.FreeTextRaw)
	if err != nil {
		return err
	}

	answersJSON, err := json.Marshal(row.AllAnswers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	values := map[string]interface{}{
		"timestamp":        row.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"),
		"student_name":     row.StudentName,
		"group":            row.StudentGroup,
		"test_id":          row.TestID,
		"test_title":       row.TestTitle,
		"score":            row.Score,
		"max_score":        row.MaxScore,
		"auto_score":       row.AutoScore,
		"manual_needed":    yesNo(row.ManualNeeded),
		"all_answers_json": string(answersJSON),
		"telegram_id":      strconv.FormatInt(row.TelegramID, 10),
	}
	for qid, raw := range row.FreeTextRaw {
		values[qid+"_raw"] = raw
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("failed to read workbook rows: %w", err)
	}
	target := len(rows) + 1

	line := make([]interface{}, len(header))
	for i, col := range header {
		if v, ok := values[col]; ok {
			line[i] = v
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, target)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &line); err != nil {
		return fmt.Errorf("failed to write result row: %w", err)
	}

	return f.Save()
}

// PendingNotifications lists rows where manual_score_total is filled
// in but notified is still blank.
func (w *Workbook) PendingNotifications() ([]PendingRow, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	idx := columnIndex(rows[0])
	var pending []PendingRow
	for i, row := range rows[1:] {
		manualRaw := strings.TrimSpace(cellAt(row, idx["manual_score_total"]))
		notified := strings.TrimSpace(cellAt(row, idx["notified"]))
		if manualRaw == "" || notified != "" {
			continue
		}
		manual, err := strconv.ParseFloat(manualRaw, 64)
		if err != nil {
			continue
		}
		telegramID, err := strconv.ParseInt(strings.TrimSpace(cellAt(row, idx["telegram_id"])), 10, 64)
		if err != nil {
			continue
		}
		pending = append(pending, PendingRow{
			Row:         i + 2,
			TelegramID:  telegramID,
			TestID:      cellAt(row, idx["test_id"]),
			TestTitle:   cellAt(row, idx["test_title"]),
			StudentName: cellAt(row, idx["student_name"]),
			ManualScore: manual,
		})
	}
	return pending, nil
}

// MarkNotified sets the notified flag on a sheet row.
func (w *Workbook) MarkNotified(rowIndex int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to open results workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("failed to read workbook rows: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("results workbook has no header")
	}
	col, ok := columnIndex(rows[0])["notified"]
	if !ok {
		return errors.New("results workbook has no notified column")
	}

	cell, err := excelize.CoordinatesToCellName(col+1, rowIndex)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, cell, "TRUE"); err != nil {
		return fmt.Errorf("failed to mark row notified: %w", err)
	}
	return f.Save()
}

// ensureHeader guarantees the base header prefix and columns for the
// given free-text question ids, preserving any extra teacher columns.
func ensureHeader(f *excelize.File, freeTextRaw map[string]string) ([]string, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}

	var current []string
	if len(rows) > 0 {
		current = rows[0]
	}

	header := make([]string, 0, len(BaseHeader)+len(freeTextRaw))
	header = append(header, BaseHeader...)
	if len(current) > len(BaseHeader) {
		header = append(header, current[len(BaseHeader):]...)
	}

	have := make(map[string]bool, len(header))
	for _, col := range header {
		have[col] = true
	}
	missing := make([]string, 0, len(freeTextRaw))
	for qid := range freeTextRaw {
		if col := qid + "_raw"; !have[col] {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	header = append(header, missing...)

	if !equalHeader(current, header) {
		if err := setHeader(f, header); err != nil {
			return nil, err
		}
	}
	return header, nil
}

func setHeader(f *excelize.File, header []string) error {
	line := make([]interface{}, len(header))
	for i, col := range header {
		line[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &line); err != nil {
		return fmt.Errorf("failed to write workbook header: %w", err)
	}
	return nil
}

func equalHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	return idx
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
