package sheets

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRow(telegramID int64) ResultRow {
	return ResultRow{
		Timestamp:    time.Date(2025, 10, 7, 12, 30, 0, 0, time.UTC),
		StudentName:  "Ivan Petrov",
		StudentGroup: "BIO-21",
		TestID:       "bio1",
		TestTitle:    "Biology Basics",
		Score:        7.5,
		MaxScore:     10,
		AutoScore:    7.5,
		ManualNeeded: true,
		AllAnswers:   map[string]string{"q1": "a", "q5": "mitosis splits the cell"},
		FreeTextRaw:  map[string]string{"q5": "mitosis splits the cell"},
		TelegramID:   telegramID,
	}
}

func TestWorkbookAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	wb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, wb.Append(sampleRow(1001)))
	require.NoError(t, wb.Append(sampleRow(1002)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	t.Run("header has base columns plus raw answer column", func(t *testing.T) {
		assert.Equal(t, BaseHeader, rows[0][:len(BaseHeader)])
		assert.Contains(t, rows[0], "q5_raw")
	})

	t.Run("row values land under the right columns", func(t *testing.T) {
		idx := columnIndex(rows[0])
		row := rows[1]
		assert.Equal(t, "Ivan Petrov", cellAt(row, idx["student_name"]))
		assert.Equal(t, "bio1", cellAt(row, idx["test_id"]))
		assert.Equal(t, "7.5", cellAt(row, idx["score"]))
		assert.Equal(t, "YES", cellAt(row, idx["manual_needed"]))
		assert.Equal(t, "1001", cellAt(row, idx["telegram_id"]))
		assert.Equal(t, "mitosis splits the cell", cellAt(row, idx["q5_raw"]))
		assert.Contains(t, cellAt(row, idx["all_answers_json"]), `"q1":"a"`)
		// Teacher-owned columns start blank.
		assert.Equal(t, "", cellAt(row, idx["manual_score_total"]))
		assert.Equal(t, "", cellAt(row, idx["notified"]))
	})
}

func TestWorkbookPendingNotifications(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	wb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, wb.Append(sampleRow(2001)))
	require.NoError(t, wb.Append(sampleRow(2002)))
	require.NoError(t, wb.Append(sampleRow(2003)))

	// Teacher fills in manual scores for rows 2 and 4.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	idx := columnIndex(rows[0])
	col := idx["manual_score_total"] + 1
	cell2, _ := excelize.CoordinatesToCellName(col, 2)
	cell4, _ := excelize.CoordinatesToCellName(col, 4)
	require.NoError(t, f.SetCellValue("Sheet1", cell2, 9.5))
	require.NoError(t, f.SetCellValue("Sheet1", cell4, 6))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	pending, err := wb.PendingNotifications()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(2001), pending[0].TelegramID)
	assert.Equal(t, 9.5, pending[0].ManualScore)
	assert.Equal(t, 2, pending[0].Row)
	assert.Equal(t, int64(2003), pending[1].TelegramID)

	t.Run("marking notified removes the row from pending", func(t *testing.T) {
		require.NoError(t, wb.MarkNotified(2))

		pending, err := wb.PendingNotifications()
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, int64(2003), pending[0].TelegramID)
	})
}

func TestWorkbookOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	wb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, wb.Append(sampleRow(3001)))

	// Reopening must not truncate existing rows.
	again, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, again.Append(sampleRow(3002)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
