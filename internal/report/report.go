// Package report summarizes a learner's progress and exports it as an
// XLSX workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/store"
)

const (
	coursesSheet  = "Courses"
	attemptsSheet = "Quiz Attempts"
)

// Progress is a snapshot of a learner's progress.
type Progress struct {
	UserID    string
	Courses   []backend.Course // enrolled courses only
	Topics    []store.TopicStat
	Generated time.Time
}

// Build keeps the enrolled courses and attaches local quiz statistics.
func Build(userID string, courses []backend.Course, stats []store.TopicStat, now time.Time) Progress {
	p := Progress{UserID: userID, Topics: stats, Generated: now}
	for _, c := range courses {
		if c.Enrolled() {
			p.Courses = append(p.Courses, c)
		}
	}
	return p
}

// Average returns the mean completion percentage over enrolled courses, or 0
// when there are none.
func (p Progress) Average() float64 {
	if len(p.Courses) == 0 {
		return 0
	}
	var sum float64
	for _, c := range p.Courses {
		sum += c.PercentComplete()
	}
	return sum / float64(len(p.Courses))
}

// Completed returns the number of courses at 100%.
func (p Progress) Completed() int {
	n := 0
	for _, c := range p.Courses {
		if c.PercentComplete() >= 100 {
			n++
		}
	}
	return n
}

// WriteXLSX writes p as a workbook with a course sheet and a quiz attempt
// sheet.
func WriteXLSX(w io.Writer, p Progress) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", coursesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(attemptsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	courseRows := [][]any{{"Course ID", "Title", "Level", "Progress %"}}
	for _, c := range p.Courses {
		courseRows = append(courseRows, []any{c.ID, c.Title, c.Level, c.PercentComplete()})
	}
	courseRows = append(courseRows,
		[]any{},
		[]any{"Average", "", "", p.Average()},
		[]any{"Learner", p.UserID},
		[]any{"Generated", p.Generated.Format(time.RFC3339)},
	)
	if err := writeRows(f, coursesSheet, courseRows, header); err != nil {
		return err
	}

	attemptRows := [][]any{{"Course ID", "Topic ID", "Attempts", "Best Correct", "Questions", "Last Attempt"}}
	for _, s := range p.Topics {
		attemptRows = append(attemptRows, []any{
			s.CourseID, s.TopicID, s.Attempts, s.BestCorrect, s.Total, s.LastAt.Format(time.RFC3339),
		})
	}
	if err := writeRows(f, attemptsSheet, attemptRows, header); err != nil {
		return err
	}

	if err := f.SetColWidth(coursesSheet, "B", "B", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}
