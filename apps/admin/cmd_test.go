package main

import (
	"bytes"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	flatfiledb "github.com/Shravik17/Attendance-Tracker/storage/database/flatfile"
	"github.com/Shravik17/Attendance-Tracker/tests"
)

func setup(t *testing.T, dir ...string) (*commandLine, *bytes.Buffer, testutil.Services) {
	svcs := testutil.NewServices(testutil.PrepareDB(t, dir...))
	var out bytes.Buffer
	return &commandLine{
		out:           &out,
		dataDir:       svcs.DB.Dir(),
		studentSvc:    svcs.Students,
		attendanceSvc: svcs.Attendance,
	}, &out, svcs
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out, _ := setup(t)
	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown flag", args: []string{"verify", "-lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_students(t *testing.T) {
	cli, out, svcs := setup(t)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "roster.csv")
	require.NoError(t, ioutil.WriteFile(csvPath, []byte("id,name\n5,Bob\n,Carol\n"), 0o644))
	txtPath := filepath.Join(dir, "roster.txt")
	require.NoError(t, ioutil.WriteFile(txtPath, []byte("Dan\n"), 0o644))

	runCLITests(t, cli, out, []cliTest{
		{name: "addstudent: no args", args: []string{"addstudent"}, wantErr: errHelp},
		{name: "addstudent: blank", args: []string{"addstudent", "-name", "   "}, wantErrStr: "student name is blank"},
		{name: "addstudent", args: []string{"addstudent", "-name", " Alice "}, wantOut: "Added student 1: Alice"},
		{name: "import: no args", args: []string{"import"}, wantErr: errHelp},
		{name: "import: not csv", args: []string{"import", "-file", txtPath}, wantErr: student.ErrNotCSV},
		{name: "import: missing file", args: []string{"import", "-file", filepath.Join(dir, "nope.csv")}, wantErrStr: "reading import file: open " + filepath.Join(dir, "nope.csv") + ": no such file or directory"},
		{name: "import", args: []string{"import", "-file", csvPath}, wantOut: "Imported 2 students."},
		{name: "import again", args: []string{"import", "-file", csvPath}, wantOut: "Imported 0 students."},
	})

	students, err := svcs.Students.QueryAll()
	require.NoError(t, err)
	assert.Equal(t, []student.Student{{ID: 1, Name: "Alice"}, {ID: 5, Name: "Bob"}, {ID: 6, Name: "Carol"}}, students)
}

func Test_commandLine_export(t *testing.T) {
	cli, out, svcs := setup(t)
	testutil.FixClock(t, testutil.Date(2024, 1, 10))
	testutil.CreateStudents(t, svcs.Students, "Alice", "Bob")
	require.NoError(t, svcs.Attendance.SetDay("2024-01-09", attendance.Marks{1: false}))
	require.NoError(t, svcs.Attendance.SetDay("2024-01-10", attendance.Marks{1: true, 2: false}))

	dir := t.TempDir()
	csvOut := filepath.Join(dir, "report.csv")
	xlsxOut := filepath.Join(dir, "report.xlsx")

	runCLITests(t, cli, out, []cliTest{
		{name: "no ids", args: []string{"export"}, wantErr: errHelp},
		{name: "bad id", args: []string{"export", "-ids", "1,x"}, wantErrStr: `invalid student id "x"`},
		{name: "bad format", args: []string{"export", "-ids", "all", "-format", "pdf"}, wantErrStr: `unknown export format "pdf"`},
		{name: "bad date", args: []string{"export", "-ids", "all", "-from", "2024-1-1"}, wantErr: attendance.ErrInvalidDate,
			wantOut: "from_date: must be a date formatted as YYYY-MM-DD"},
		{
			name: "csv", args: []string{"export", "-ids", "2, 1", "-from", "2024-01-10", "-to", "2024-01-10", "-out", csvOut},
			wantOut: "Exported 2 students over 1 days to " + csvOut,
		},
		{name: "xlsx", args: []string{"export", "-ids", "all", "-format", "xlsx", "-out", xlsxOut}, wantOut: "Exported 2 students over 2 days"},
	})

	data, err := ioutil.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Equal(t, "Student Name,Attendance %,2024-01-10\nAlice,100.0,P\nBob,0.0,A\n", string(data))

	data, err = ioutil.ReadFile(xlsxOut)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func Test_commandLine_verify(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFiles(t, dir, "id,name\n1,Alice\n", "date,student_id,present\n2024-01-10,1,1\n")
		cli, out, _ := setup(t, dir)

		require.NoError(t, cli.run([]string{"admin", "verify"}))
		assert.Equal(t, "students.csv: 1 rows OK\nattendance.csv: 1 rows OK\n", out.String())
	})

	t.Run("malformed", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFiles(t, dir, "id,name\n1,Alice\nx,Bob\n", "")
		cli, _, _ := setup(t, dir)

		err := cli.run([]string{"admin", "verify"})
		var rowErr *flatfiledb.RowError
		require.True(t, errors.As(err, &rowErr), "err = %v", err)
		assert.Equal(t, flatfiledb.StudentsFile, rowErr.File)
		assert.Equal(t, 3, rowErr.Line)
	})
}

func Test_commandLine_hashPassword(t *testing.T) {
	cli, out, _ := setup(t)

	type extra struct {
		pwd string
		err error
	}
	errTTY := errors.New("not a terminal")
	tests := []cliTest{
		{name: "empty password", args: []string{"hashpassword"}, wantErr: errHelp},
		{name: "read failure", args: []string{"hashpassword"}, extra: extra{err: errTTY}, wantErr: errTTY},
		{name: "hash", args: []string{"hashpassword"}, extra: extra{pwd: "s3cret"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), extra.err
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			assert.Equal(t, tt.wantErr, err)
			if err == nil {
				lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
				hash := lines[len(lines)-1]
				assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("s3cret")))
			}
		})
	}
}
