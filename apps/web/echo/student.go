package echoweb

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

const (
	msgNoStudent       = "Please specify a student"
	msgStudentNotFound = "Student not found."
	msgInvalidPeriod   = "Invalid calendar period."
)

// calendarPage is the student calendar plus the navigation that surrounds it.
type calendarPage struct {
	attendance.Calendar
	Path      string
	BackPath  string
	BackLabel string
}

func registerStudentViewRoutes(app *echo.Echo, s *server) {
	app.GET("/student_view", s.studentPicker)
	app.GET("/student_attendance_public", s.studentCalendar("/student_view", "Back to Student View"))
	app.GET(
		"/student_attendance",
		s.studentCalendar("/admin", "Back to Admin"),
		roleMiddleware(user.RoleAdmin),
	)
}

func (s *server) studentPicker(ctx echo.Context) error {
	students, err := s.StudentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return s.render(ctx, http.StatusOK, "student_view_select.html", students)
}

// studentCalendar renders the monthly calendar; failures go back to backPath with a notice.
func (s *server) studentCalendar(backPath, backLabel string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		back := func(msg string) error {
			setFlash(ctx, msg)
			return ctx.Redirect(http.StatusFound, backPath)
		}

		sid, err := strconv.Atoi(ctx.QueryParam("student_id"))
		if err != nil {
			return back(msgNoStudent)
		}
		period, err := queryPeriod(ctx)
		if err != nil {
			return back(msgInvalidPeriod)
		}

		cal, err := s.AttendanceSvc.Calendar(sid, period)
		switch errors.Cause(err) {
		case nil:
		case student.ErrNotFound:
			return back(msgStudentNotFound)
		case attendance.ErrInvalidPeriod:
			return back(msgInvalidPeriod)
		default:
			return errors.Wrap(err, "building calendar")
		}

		return s.render(ctx, http.StatusOK, "student_calendar.html", calendarPage{
			Calendar:  cal,
			Path:      ctx.Path(),
			BackPath:  backPath,
			BackLabel: backLabel,
		})
	}
}

// queryPeriod reads year and month, only when both are given.
func queryPeriod(ctx echo.Context) (*attendance.Period, error) {
	yearArg, monthArg := ctx.QueryParam("year"), ctx.QueryParam("month")
	if yearArg == "" || monthArg == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		return nil, err
	}
	month, err := strconv.Atoi(monthArg)
	if err != nil {
		return nil, err
	}
	return &attendance.Period{Year: year, Month: month}, nil
}
