package flatfiledb

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
)

// ParsePolicy decides what happens to stored rows that do not parse.
type ParsePolicy int

const (
	// ParseLenient skips malformed rows and counts them.
	ParseLenient ParsePolicy = iota
	// ParseStrict stops at the first malformed row with a *RowError.
	ParseStrict
)

var (
	studentsHeader   = []string{"id", "name"}
	attendanceHeader = []string{"date", "student_id", "present"}
)

// RowError locates a malformed row. Line is the 1-based record number, header included.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// LoadStats counts the data rows read from a file.
type LoadStats struct {
	Rows    int
	Skipped int
}

// readTable reads a headed CSV file and hands each data row, keyed by header name, to fn.
// fn returns a non-nil error for rows that must be skipped.
func readTable(r io.Reader, file string, policy ParsePolicy, fn func(get func(col string) (string, bool)) error) (LoadStats, error) {
	var stats LoadStats

	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	header, err := rdr.Read()
	if err == io.EOF {
		return stats, nil
	}
	if err != nil {
		return stats, errors.Wrapf(err, "reading %s header", file)
	}
	cols := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		if _, dup := cols[col]; !dup {
			cols[col] = i
		}
	}

	line := 1
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		line++
		stats.Rows++
		if err != nil {
			if _, ok := err.(*csv.ParseError); !ok {
				return stats, errors.Wrapf(err, "reading %s", file)
			}
			if policy == ParseStrict {
				return stats, &RowError{File: file, Line: line, Err: err}
			}
			stats.Skipped++
			continue
		}

		get := func(col string) (string, bool) {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return "", false
			}
			return rec[i], true
		}
		if err := fn(get); err != nil {
			if policy == ParseStrict {
				return stats, &RowError{File: file, Line: line, Err: err}
			}
			stats.Skipped++
		}
	}
	return stats, nil
}

func parseInt(get func(string) (string, bool), col string) (int, error) {
	raw, ok := get(col)
	if !ok {
		return 0, errors.Errorf("missing %q", col)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Errorf("%q: %q is not an integer", col, raw)
	}
	return n, nil
}

// ReadStudents parses a students file (id,name) and returns the roster in file order.
func ReadStudents(r io.Reader, policy ParsePolicy) (student.Roster, LoadStats, error) {
	var students []student.Student
	stats, err := readTable(r, StudentsFile, policy, func(get func(string) (string, bool)) error {
		id, err := parseInt(get, "id")
		if err != nil {
			return err
		}
		name, _ := get("name")
		students = append(students, student.Student{ID: id, Name: name})
		return nil
	})
	if err != nil {
		return student.Roster{}, stats, err
	}
	return student.Roster{Students: students, NextID: student.NextIDFor(students)}, stats, nil
}

// WriteStudents writes the header and every student.
func WriteStudents(w io.Writer, students []student.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(studentsHeader); err != nil {
		return err
	}
	for _, st := range students {
		if err := cw.Write([]string{strconv.Itoa(st.ID), st.Name}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAttendance parses an attendance file (date,student_id,present). Any non-zero present value is a presence.
func ReadAttendance(r io.Reader, policy ParsePolicy) (attendance.Register, LoadStats, error) {
	reg := make(attendance.Register)
	stats, err := readTable(r, AttendanceFile, policy, func(get func(string) (string, bool)) error {
		day, ok := get("date")
		if !ok {
			return errors.New(`missing "date"`)
		}
		sid, err := parseInt(get, "student_id")
		if err != nil {
			return err
		}
		present, err := parseInt(get, "present")
		if err != nil {
			return err
		}
		if reg[day] == nil {
			reg[day] = make(attendance.Marks)
		}
		reg[day][sid] = present != 0
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return reg, stats, nil
}

// WriteAttendance writes the header and every mark, days and students ascending.
func WriteAttendance(w io.Writer, reg attendance.Register) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attendanceHeader); err != nil {
		return err
	}
	for _, day := range reg.Dates() {
		marks := reg[day]
		ids := make([]int, 0, len(marks))
		for sid := range marks {
			ids = append(ids, sid)
		}
		sort.Ints(ids)
		for _, sid := range ids {
			present := "0"
			if marks[sid] {
				present = "1"
			}
			if err := cw.Write([]string{day, strconv.Itoa(sid), present}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
