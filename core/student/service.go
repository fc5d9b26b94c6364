package student

import (
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrNotCSV       = errors.New("please upload a .csv file")
	ErrMalformedCSV = errors.New("error processing CSV")
)

type (
	Repository interface {
		// GetRoster returns a copy of the current roster.
		GetRoster() (Roster, error)
		// SaveRoster replaces the roster and persists it.
		SaveRoster(roster Roster) error
		// DeleteStudent removes the student and every mark referencing it, then persists both record sets.
		// Unknown ids are ignored.
		DeleteStudent(id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll() ([]Student, error) {
	roster, err := svc.repo.GetRoster()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "getting roster")
	}
	return roster.Students, nil
}

func (svc *Service) GetByID(id int) (Student, error) {
	roster, err := svc.repo.GetRoster()
	if err != nil {
		return Student{}, pkgerrors.Wrap(err, "getting roster")
	}
	if st, ok := roster.Get(id); ok {
		return st, nil
	}
	return Student{}, ErrNotFound
}

// Add appends a student under the next identifier. Blank names are a no-op and report false.
func (svc *Service) Add(p user.Principal, ns NewStudent) (Student, bool, error) {
	if err := p.Require(user.RoleAdmin); err != nil {
		return Student{}, false, err
	}
	if !ns.Clean() {
		return Student{}, false, nil
	}

	roster, err := svc.repo.GetRoster()
	if err != nil {
		return Student{}, false, pkgerrors.Wrap(err, "getting roster")
	}
	st := Student{ID: roster.NextID, Name: ns.Name}
	roster.Students = append(roster.Students, st)
	roster.NextID++

	if err = svc.repo.SaveRoster(roster); err != nil {
		return Student{}, false, pkgerrors.Wrap(err, "saving roster")
	}
	return st, true, nil
}

// Delete removes the student and its attendance marks.
func (svc *Service) Delete(p user.Principal, id int) error {
	if err := p.Require(user.RoleAdmin); err != nil {
		return err
	}
	return pkgerrors.Wrap(svc.repo.DeleteStudent(id), "deleting student")
}
