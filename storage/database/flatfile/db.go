package flatfiledb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
)

const (
	StudentsFile   = "students.csv"
	AttendanceFile = "attendance.csv"
)

// DB keeps the roster and the register in memory and rewrites the matching file after every mutation.
// Concurrent writers are not reconciled: the last snapshot written wins.
type DB struct {
	dir    string
	logger core.Logger

	mutex    sync.RWMutex
	roster   student.Roster
	register attendance.Register
}

// Open creates dir and both files (header only) when missing, then loads them leniently.
func Open(dir string, logger core.Logger) (*DB, error) {
	db := &DB{dir: dir, logger: logger}
	if err := db.ensureFiles(); err != nil {
		return nil, err
	}
	if err := db.Reload(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) Dir() string { return db.dir }

func (db *DB) path(file string) string { return filepath.Join(db.dir, file) }

func (db *DB) ensureFiles() error {
	if err := os.MkdirAll(db.dir, 0o755); err != nil {
		return errors.Wrap(err, "creating data dir")
	}
	if err := createIfMissing(db.path(StudentsFile), func(w io.Writer) error { return WriteStudents(w, nil) }); err != nil {
		return err
	}
	return createIfMissing(db.path(AttendanceFile), func(w io.Writer) error { return WriteAttendance(w, nil) })
}

func createIfMissing(path string, write func(io.Writer) error) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "checking %s", path)
	}
	return writeFile(path, write)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err = write(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func readFile(path string, read func(io.Reader) (LoadStats, error)) (LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LoadStats{}, nil
		}
		return LoadStats{}, errors.Wrapf(err, "opening %s", path)
	}
	defer func() { _ = f.Close() }()
	return read(f)
}

// Reload replaces the in-memory state with the files' content. Malformed rows are skipped.
func (db *DB) Reload() error {
	roster, reg, err := load(db.dir, ParseLenient, db.logger)
	if err != nil {
		return err
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.roster = roster
	db.register = reg
	return nil
}

func load(dir string, policy ParsePolicy, logger core.Logger) (student.Roster, attendance.Register, error) {
	var (
		roster student.Roster
		reg    = make(attendance.Register)
	)

	stats, err := readFile(filepath.Join(dir, StudentsFile), func(r io.Reader) (LoadStats, error) {
		var (
			stats LoadStats
			err   error
		)
		roster, stats, err = ReadStudents(r, policy)
		return stats, err
	})
	if err != nil {
		return roster, nil, err
	}
	if roster.NextID == 0 {
		roster.NextID = 1
	}
	logStats(logger, StudentsFile, stats)

	stats, err = readFile(filepath.Join(dir, AttendanceFile), func(r io.Reader) (LoadStats, error) {
		var (
			stats LoadStats
			err   error
		)
		reg, stats, err = ReadAttendance(r, policy)
		return stats, err
	})
	if err != nil {
		return roster, nil, err
	}
	if reg == nil {
		reg = make(attendance.Register)
	}
	logStats(logger, AttendanceFile, stats)
	return roster, reg, nil
}

func logStats(logger core.Logger, file string, stats LoadStats) {
	if logger == nil {
		return
	}
	logger.Debug("loaded "+file, map[string]interface{}{"rows": stats.Rows, "skipped": stats.Skipped})
}

// Verify reads both files of dir strictly and returns the first malformed row, if any.
func Verify(dir string) (students, marks LoadStats, err error) {
	students, err = readFile(filepath.Join(dir, StudentsFile), func(r io.Reader) (LoadStats, error) {
		_, stats, err := ReadStudents(r, ParseStrict)
		return stats, err
	})
	if err != nil {
		return students, marks, err
	}
	marks, err = readFile(filepath.Join(dir, AttendanceFile), func(r io.Reader) (LoadStats, error) {
		_, stats, err := ReadAttendance(r, ParseStrict)
		return stats, err
	})
	return students, marks, err
}

// saveStudents and saveAttendance must be called with the write lock held.
// Callers assign the in-memory state only once the file is written.

func (db *DB) saveStudents(students []student.Student) error {
	return db.write(StudentsFile, func(w io.Writer) error {
		return WriteStudents(w, students)
	})
}

func (db *DB) saveAttendance(reg attendance.Register) error {
	return db.write(AttendanceFile, func(w io.Writer) error {
		return WriteAttendance(w, reg)
	})
}

// write reports a vanished data dir as a shutdown error.
func (db *DB) write(file string, fn func(io.Writer) error) error {
	if _, err := os.Stat(db.dir); os.IsNotExist(err) {
		return core.NewShutdownError(fmt.Sprintf("data dir %s is gone", db.dir))
	}
	return writeFile(db.path(file), fn)
}
