package testutil

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
	logsvc "github.com/Shravik17/Attendance-Tracker/services/logger"
	"github.com/Shravik17/Attendance-Tracker/storage/database/flatfile"
)

var (
	Admin   = user.Principal{Username: "admin", Role: user.RoleAdmin}
	Faculty = user.Principal{Username: "faculty", Role: user.RoleFaculty}
)

// Services bundles the domain services wired on a temporary flat-file DB.
type Services struct {
	DB         *flatfiledb.DB
	Students   *student.Service
	Attendance *attendance.Service
}

func NewConfig() *core.Config {
	conf := &core.Config{Env: "TEST", TestMode: true, AppName: "Attendance Tracker", SecretKey: "test-secret"}
	conf.Server.SessionExpirationDelta = time.Hour
	conf.Server.DisableCSRF = true
	conf.Accounts.AdminPassword = "admin123"
	conf.Accounts.FacultyPassword = "faculty123"
	return conf
}

func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "TEST : ", 0), NewConfig())
	logger.Enable(false)
	return logger
}

// WriteFiles seeds a data dir with raw students and attendance file contents. Empty contents are not written.
func WriteFiles(t *testing.T, dir, students, marks string) {
	t.Helper()
	if students != "" {
		if err := ioutil.WriteFile(filepath.Join(dir, flatfiledb.StudentsFile), []byte(students), 0o644); err != nil {
			t.Fatalf("WriteFiles() failed: %v", err)
		}
	}
	if marks != "" {
		if err := ioutil.WriteFile(filepath.Join(dir, flatfiledb.AttendanceFile), []byte(marks), 0o644); err != nil {
			t.Fatalf("WriteFiles() failed: %v", err)
		}
	}
}

// ReadFile returns the content of a data file.
func ReadFile(t *testing.T, db *flatfiledb.DB, file string) string {
	t.Helper()
	data, err := ioutil.ReadFile(filepath.Join(db.Dir(), file))
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	return string(data)
}

// PrepareDB opens a flat-file DB on dir, or on a fresh temp dir when dir is empty.
func PrepareDB(t *testing.T, dir ...string) *flatfiledb.DB {
	t.Helper()
	d := t.TempDir()
	if len(dir) > 0 && dir[0] != "" {
		d = dir[0]
	}
	db, err := flatfiledb.Open(d, NewLogger())
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func NewServices(db *flatfiledb.DB) Services {
	students := student.NewService(flatfiledb.NewStudentRepository(db))
	return Services{
		DB:         db,
		Students:   students,
		Attendance: attendance.NewService(flatfiledb.NewAttendanceRepository(db), students),
	}
}

// FixClock pins attendance.NowFunc to now until the test ends.
func FixClock(t *testing.T, now time.Time) {
	attendance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { attendance.NowFunc = time.Now })
}

// Date returns midday of the given day in UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// CreateStudents adds students by name and returns them in order.
func CreateStudents(t *testing.T, svc *student.Service, names ...string) []student.Student {
	t.Helper()
	out := make([]student.Student, 0, len(names))
	for _, name := range names {
		st, ok, err := svc.Add(Admin, student.NewStudent{Name: name})
		if err != nil || !ok {
			t.Fatalf("CreateStudents() failed: %v", err)
		}
		out = append(out, st)
	}
	return out
}
