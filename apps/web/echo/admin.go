package echoweb

import (
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

const (
	msgNotCSV       = "Please upload a .csv file."
	msgImportFailed = "Error processing CSV."
)

func registerAdminRoutes(app *echo.Echo, s *server) {
	app.GET("/admin", s.adminDashboard, roleMiddleware(user.RoleAdmin))
	g := app.Group("/admin")
	g.POST("/add_student", s.addStudent, roleMiddleware(user.RoleAdmin))
	g.POST("/import_students", s.importStudents, roleMiddleware(user.RoleAdmin, "Access denied"))
	g.POST("/delete_student/:id", s.deleteStudent, roleMiddleware(user.RoleAdmin))
}

func (s *server) adminDashboard(ctx echo.Context) error {
	students, err := s.StudentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return s.render(ctx, http.StatusOK, "admin_dashboard.html", students)
}

func (s *server) addStudent(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if _, _, err := s.StudentSvc.Add(getContextPrincipal(ctx), data); err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.Redirect(http.StatusFound, "/admin")
}

func (s *server) importStudents(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		setFlash(ctx, msgNotCSV)
		return ctx.Redirect(http.StatusFound, "/admin")
	}
	content, err := readUpload(fh)
	if err != nil {
		s.Logger.Warn("reading upload", err, getContextPrincipal(ctx))
		setFlash(ctx, msgImportFailed)
		return ctx.Redirect(http.StatusFound, "/admin")
	}

	added, err := s.StudentSvc.Import(getContextPrincipal(ctx), fh.Filename, content)
	switch cause := errors.Cause(err); cause {
	case nil:
		setFlash(ctx, fmt.Sprintf("Imported %d students.", added))
	case student.ErrNotCSV:
		setFlash(ctx, msgNotCSV)
	case user.ErrForbidden:
		return err
	default:
		if cause != student.ErrMalformedCSV {
			s.Logger.Error("importing students", err, getContextPrincipal(ctx))
		}
		setFlash(ctx, msgImportFailed)
	}
	return ctx.Redirect(http.StatusFound, "/admin")
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ioutil.ReadAll(f)
}

func (s *server) deleteStudent(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	if err = s.StudentSvc.Delete(getContextPrincipal(ctx), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.Redirect(http.StatusFound, "/admin")
}
