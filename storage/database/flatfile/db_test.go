package flatfiledb_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/storage/database/flatfile"
	"github.com/Shravik17/Attendance-Tracker/tests"
)

func TestOpen_createsFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	db := testutil.PrepareDB(t, dir)

	assert.Equal(t, "id,name\n", testutil.ReadFile(t, db, flatfiledb.StudentsFile))
	assert.Equal(t, "date,student_id,present\n", testutil.ReadFile(t, db, flatfiledb.AttendanceFile))

	roster, err := flatfiledb.NewStudentRepository(db).GetRoster()
	require.NoError(t, err)
	assert.Empty(t, roster.Students)
	assert.Equal(t, 1, roster.NextID)
}

func TestOpen_loadsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir,
		"id,name\n1,Alice\nbad,Row\n5,Bob\n",
		"date,student_id,present\n2024-01-10,1,1\n2024-01-10,5,0\n",
	)
	db := testutil.PrepareDB(t, dir)

	roster, err := flatfiledb.NewStudentRepository(db).GetRoster()
	require.NoError(t, err)
	assert.Equal(t, []student.Student{{ID: 1, Name: "Alice"}, {ID: 5, Name: "Bob"}}, roster.Students)
	assert.Equal(t, 6, roster.NextID)

	reg, err := flatfiledb.NewAttendanceRepository(db).GetRegister()
	require.NoError(t, err)
	assert.Equal(t, attendance.Register{"2024-01-10": {1: true, 5: false}}, reg)
}

func TestRepositories_snapshotPersistence(t *testing.T) {
	db := testutil.PrepareDB(t)
	students := flatfiledb.NewStudentRepository(db)
	marks := flatfiledb.NewAttendanceRepository(db)

	require.NoError(t, students.SaveRoster(student.Roster{
		Students: []student.Student{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}},
		NextID:   3,
	}))
	require.NoError(t, marks.SaveDay("2024-01-10", attendance.Marks{1: true, 2: false}))
	require.NoError(t, marks.SaveDay("2024-01-11", attendance.Marks{2: true}))
	assert.Equal(t, "id,name\n1,Alice\n2,Bob\n", testutil.ReadFile(t, db, flatfiledb.StudentsFile))

	// register copies are detached from the DB
	reg, err := marks.GetRegister()
	require.NoError(t, err)
	reg["2024-01-10"][1] = false
	reg, err = marks.GetRegister()
	require.NoError(t, err)
	assert.True(t, reg["2024-01-10"][1])

	// a wholesale day replace drops marks that are not resubmitted
	require.NoError(t, marks.SaveDay("2024-01-10", attendance.Marks{2: true}))

	require.NoError(t, students.DeleteStudent(2))
	assert.Equal(t, "id,name\n1,Alice\n", testutil.ReadFile(t, db, flatfiledb.StudentsFile))
	assert.Equal(t, "date,student_id,present\n", testutil.ReadFile(t, db, flatfiledb.AttendanceFile))

	// unknown ids are ignored
	require.NoError(t, students.DeleteStudent(42))

	reopened := testutil.PrepareDB(t, db.Dir())
	roster, err := flatfiledb.NewStudentRepository(reopened).GetRoster()
	require.NoError(t, err)
	assert.Equal(t, []student.Student{{ID: 1, Name: "Alice"}}, roster.Students)
	assert.Equal(t, 2, roster.NextID)
}

func TestRepositories_failedWriteKeepsState(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, "id,name\n1,Alice\n", "date,student_id,present\n2024-01-10,1,1\n")
	db := testutil.PrepareDB(t, dir)
	students := flatfiledb.NewStudentRepository(db)
	marks := flatfiledb.NewAttendanceRepository(db)

	// files replaced by directories cannot be rewritten
	for _, file := range []string{flatfiledb.StudentsFile, flatfiledb.AttendanceFile} {
		require.NoError(t, os.Remove(filepath.Join(dir, file)))
		require.NoError(t, os.Mkdir(filepath.Join(dir, file), 0o755))
	}

	assert.Error(t, students.SaveRoster(student.Roster{
		Students: []student.Student{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}},
		NextID:   3,
	}))
	assert.Error(t, marks.SaveDay("2024-01-11", attendance.Marks{1: false}))
	assert.Error(t, students.DeleteStudent(1))

	roster, err := students.GetRoster()
	require.NoError(t, err)
	assert.Equal(t, []student.Student{{ID: 1, Name: "Alice"}}, roster.Students)
	assert.Equal(t, 2, roster.NextID)

	reg, err := marks.GetRegister()
	require.NoError(t, err)
	assert.Equal(t, attendance.Register{"2024-01-10": {1: true}}, reg)
}

func TestRepositories_missingDataDir(t *testing.T) {
	svcs := testutil.NewServices(testutil.PrepareDB(t))
	require.NoError(t, os.RemoveAll(svcs.DB.Dir()))

	_, _, err := svcs.Students.Add(testutil.Admin, student.NewStudent{Name: "Alice"})
	require.Error(t, err)
	assert.True(t, core.IsShutdown(err), "error = %v", err)

	err = svcs.Attendance.SetDay("2024-01-10", attendance.Marks{1: true})
	require.Error(t, err)
	assert.True(t, core.IsShutdown(err), "error = %v", err)

	roster, err := flatfiledb.NewStudentRepository(svcs.DB).GetRoster()
	require.NoError(t, err)
	assert.Empty(t, roster.Students)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, "id,name\n1,Alice\n", "date,student_id,present\n2024-01-10,1,1\n2024-01-10,2,maybe\n")

	students, marks, err := flatfiledb.Verify(dir)
	var rowErr *flatfiledb.RowError
	require.True(t, errors.As(err, &rowErr), "error = %v", err)
	assert.Equal(t, flatfiledb.AttendanceFile, rowErr.File)
	assert.Equal(t, 3, rowErr.Line)
	assert.Equal(t, 1, students.Rows)
	assert.Equal(t, 2, marks.Rows)

	require.NoError(t, os.Remove(filepath.Join(dir, flatfiledb.AttendanceFile)))
	_, _, err = flatfiledb.Verify(dir)
	assert.NoError(t, err)
}
