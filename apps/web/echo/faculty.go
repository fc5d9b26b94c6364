package echoweb

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

const (
	presentFieldPrefix = "present_"
	msgInvalidDate     = "Invalid date selection."
)

type (
	facultyRow struct {
		Student  student.Student
		Present  bool
		Recorded bool
	}

	facultyDashboard struct {
		SelectedDate string
		Disabled     bool
		Rows         []facultyRow
		Dates        []string
		Percentages  []attendance.Percentage
	}

	exportPage struct {
		From     string
		To       string
		Students []student.Student
	}
)

func registerFacultyRoutes(app *echo.Echo, s *server) {
	g := app.Group("/faculty", roleMiddleware(user.RoleFaculty))
	g.GET("", s.facultyDashboard)
	g.POST("", s.submitAttendance)
	g.GET("/export", s.exportFilter)
	g.POST("/export_csv", s.exportReport)
}

func (s *server) facultyDashboard(ctx echo.Context) error {
	return s.renderFacultyDashboard(ctx, selectedDate(ctx.QueryParam("selected_date")))
}

func (s *server) submitAttendance(ctx echo.Context) error {
	day := selectedDate(ctx.FormValue("selected_date"))
	form, err := ctx.FormParams()
	if err != nil {
		return errors.Wrap(err, "parsing form")
	}

	present := make(map[int]bool)
	for key, vals := range form {
		if !strings.HasPrefix(key, presentFieldPrefix) || len(vals) == 0 || vals[0] != "on" {
			continue
		}
		if sid, err := strconv.Atoi(strings.TrimPrefix(key, presentFieldPrefix)); err == nil {
			present[sid] = true
		}
	}

	if _, err = s.AttendanceSvc.Submit(getContextPrincipal(ctx), day, present); err != nil {
		if errors.Cause(err) != attendance.ErrNotToday {
			return errors.Wrap(err, "submitting attendance")
		}
		setFlash(ctx, "Attendance can only be recorded for today.")
	}
	return s.renderFacultyDashboard(ctx, day)
}

// selectedDate defaults a blank date to today.
func selectedDate(raw string) string {
	if day := core.CleanString(raw); day != "" {
		return day
	}
	return attendance.Today()
}

func (s *server) renderFacultyDashboard(ctx echo.Context, day string) error {
	students, err := s.StudentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	marks, err := s.AttendanceSvc.GetDay(day)
	if err != nil {
		return errors.Wrap(err, "getting day")
	}
	dates, err := s.AttendanceSvc.Dates()
	if err != nil {
		return errors.Wrap(err, "getting dates")
	}
	percentages, err := s.AttendanceSvc.Percentages()
	if err != nil {
		return errors.Wrap(err, "computing percentages")
	}

	data := facultyDashboard{
		SelectedDate: day,
		Disabled:     !attendance.IsToday(day),
		Rows:         make([]facultyRow, 0, len(students)),
		Dates:        dates,
		Percentages:  percentages,
	}
	for _, st := range students {
		present, ok := marks[st.ID]
		data.Rows = append(data.Rows, facultyRow{Student: st, Present: present, Recorded: ok})
	}
	return s.render(ctx, http.StatusOK, "faculty_dashboard.html", data)
}

func (s *server) exportFilter(ctx echo.Context) error {
	from, to, err := s.AttendanceSvc.DefaultRange()
	if err != nil {
		return errors.Wrap(err, "getting default range")
	}
	students, err := s.StudentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return s.render(ctx, http.StatusOK, "export_filter.html", exportPage{From: from, To: to, Students: students})
}

func (s *server) exportReport(ctx echo.Context) error {
	var filter attendance.ExportFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ExportFilter")
	}
	filter.From = core.CleanString(filter.From)
	filter.To = core.CleanString(filter.To)
	if err := s.Validate.Struct(filter); err != nil {
		setFlash(ctx, msgInvalidDate)
		return ctx.Redirect(http.StatusFound, "/faculty/export")
	}

	form, err := ctx.FormParams()
	if err != nil {
		return errors.Wrap(err, "parsing form")
	}
	filter.StudentIDs = digitIDs(form["student_ids"])

	format := core.CleanString(ctx.FormValue("format"), true /* lower */)
	if format == "" {
		format = attendance.FormatCSV
	}
	if format != attendance.FormatCSV && format != attendance.FormatXLSX {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
	}

	report, err := s.AttendanceSvc.Export(getContextPrincipal(ctx), filter)
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidDate) {
			setFlash(ctx, msgInvalidDate)
			return ctx.Redirect(http.StatusFound, "/faculty/export")
		}
		return errors.Wrap(err, "exporting attendance")
	}

	var buf bytes.Buffer
	if err = report.Write(&buf, format); err != nil {
		return errors.Wrap(err, "writing report")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+report.Filename(format))
	return ctx.Blob(http.StatusOK, attendance.ContentType(format), buf.Bytes())
}

// digitIDs keeps the all-digit values only.
func digitIDs(vals []string) []int {
	ids := make([]int, 0, len(vals))
	for _, v := range vals {
		if v == "" || strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			continue
		}
		if id, err := strconv.Atoi(v); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
