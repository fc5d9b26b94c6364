package echoweb_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/storage/database/flatfile"
	"github.com/Shravik17/Attendance-Tracker/tests"
)

func Test_facultyDashboard(t *testing.T) {
	app, svcs := setup(t)
	testutil.FixClock(t, testutil.Date(2024, 1, 10))
	testutil.CreateStudents(t, svcs.Students, "Alice", "Bob")
	require.NoError(t, svcs.Attendance.SetDay("2024-01-09", attendance.Marks{1: true, 2: false}))

	tests := []httpTest{
		{
			name: "defaults to today", path: "/faculty", principal: testutil.Faculty, wantCode: http.StatusOK,
			wantBody: []string{"Attendance for 2024-01-10", `name="present_1"`, `name="present_2"`, "2024-01-09", "Submit"},
		},
		{
			name: "past day is read only", path: "/faculty?selected_date=2024-01-09", principal: testutil.Faculty, wantCode: http.StatusOK,
			wantBody: []string{"Attendance for 2024-01-09", "disabled", "100.0%", "0.0%"},
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_submitAttendance(t *testing.T) {
	app, svcs := setup(t)
	testutil.FixClock(t, testutil.Date(2024, 1, 10))
	testutil.CreateStudents(t, svcs.Students, "Alice", "Bob", "Carol")
	require.NoError(t, svcs.Attendance.SetDay("2024-01-09", attendance.Marks{1: true}))

	t.Run("past day rejected", func(t *testing.T) {
		req, rec := newAuthRequest(t, http.MethodPost, "/faculty", testutil.Faculty, url.Values{
			"selected_date": {"2024-01-09"},
			"present_2":     {"on"},
		})
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Attendance can only be recorded for today.")

		marks, err := svcs.Attendance.GetDay("2024-01-09")
		require.NoError(t, err)
		assert.Equal(t, attendance.Marks{1: true}, marks)
	})

	t.Run("today", func(t *testing.T) {
		req, rec := newAuthRequest(t, http.MethodPost, "/faculty", testutil.Faculty, url.Values{
			"selected_date": {""},
			"present_1":     {"on"},
			"present_3":     {"on"},
			"present_x":     {"on"},
		})
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Attendance for 2024-01-10")

		marks, err := svcs.Attendance.GetDay("2024-01-10")
		require.NoError(t, err)
		assert.Equal(t, attendance.Marks{1: true, 2: false, 3: true}, marks)
		assert.Equal(t,
			"date,student_id,present\n2024-01-09,1,1\n2024-01-10,1,1\n2024-01-10,2,0\n2024-01-10,3,1\n",
			testutil.ReadFile(t, svcs.DB, flatfiledb.AttendanceFile),
		)
	})
}

func Test_export(t *testing.T) {
	app, svcs := setup(t)
	testutil.FixClock(t, testutil.Date(2024, 1, 10))
	testutil.CreateStudents(t, svcs.Students, "Alice", "Bob")
	require.NoError(t, svcs.Attendance.SetDay("2024-01-10", attendance.Marks{1: true, 2: false}))

	runHTTPTests(t, app, []httpTest{
		{
			name: "filter page", path: "/faculty/export", principal: testutil.Faculty, wantCode: http.StatusOK,
			wantBody: []string{`value="2024-01-10"`, `name="student_ids" value="1"`, `name="student_ids" value="2"`},
		},
		{
			name: "invalid date", method: http.MethodPost, path: "/faculty/export_csv", principal: testutil.Faculty,
			form:     url.Values{"from_date": {"2024-02-30"}, "to_date": {"2024-01-10"}, "student_ids": {"1"}},
			wantCode: http.StatusFound, wantLocation: "/faculty/export", wantFlash: "Invalid date selection.",
		},
		{
			name: "unknown format", method: http.MethodPost, path: "/faculty/export_csv", principal: testutil.Faculty,
			form: url.Values{"format": {"pdf"}}, wantCode: http.StatusBadRequest,
		},
	})

	t.Run("csv", func(t *testing.T) {
		req, rec := newAuthRequest(t, http.MethodPost, "/faculty/export_csv", testutil.Faculty, url.Values{
			"from_date":   {"2024-01-10"},
			"to_date":     {"2024-01-10"},
			"student_ids": {"2", "1", "abc", "-3"},
		})
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=attendance_export_20240110_120000.csv", rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "Student Name,Attendance %,2024-01-10\nAlice,100.0,P\nBob,0.0,A\n", rec.Body.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		req, rec := newAuthRequest(t, http.MethodPost, "/faculty/export_csv", testutil.Faculty, url.Values{
			"student_ids": {"1"},
			"format":      {"xlsx"},
		})
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, attendance.ContentType(attendance.FormatXLSX), rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=attendance_export_20240110_120000.xlsx", rec.Header().Get("Content-Disposition"))
		assert.True(t, rec.Body.Len() > 0)
	})
}
