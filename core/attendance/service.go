package attendance

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotToday      = errors.New("attendance can only be recorded for today")
	ErrInvalidDate   = errors.New("invalid date selection")
	ErrInvalidPeriod = errors.New("invalid calendar period")
)

type (
	Repository interface {
		// GetRegister returns a copy of every recorded day.
		GetRegister() (Register, error)
		// SaveDay replaces the marks of day wholesale and persists the register.
		SaveDay(day string, marks Marks) error
	}

	// RosterService is the part of student.Service the register depends on.
	RosterService interface {
		QueryAll() ([]student.Student, error)
		GetByID(id int) (student.Student, error)
	}

	Service struct {
		repo   Repository
		roster RosterService
	}
)

func NewService(repo Repository, roster RosterService) *Service {
	return &Service{repo: repo, roster: roster}
}

// Today returns the server's current day.
func Today() string {
	return NowFunc().Format(core.DateLayout)
}

// IsToday reports whether submissions for day may be written.
func IsToday(day string) bool {
	return day == Today()
}

func (svc *Service) Dates() ([]string, error) {
	reg, err := svc.repo.GetRegister()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "getting register")
	}
	return reg.Dates(), nil
}

// GetDay returns a copy of the marks recorded on day, empty when none.
func (svc *Service) GetDay(day string) (Marks, error) {
	reg, err := svc.repo.GetRegister()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "getting register")
	}
	if marks, ok := reg[day]; ok {
		return marks, nil
	}
	return Marks{}, nil
}

// SetDay replaces the marks of day. It does not apply the today-only gate.
func (svc *Service) SetDay(day string, marks Marks) error {
	return pkgerrors.Wrap(svc.repo.SaveDay(day, marks.Copy()), "saving day")
}

// Submit records the faculty form for day: every roster student is marked present when its id is in
// presentIDs and absent otherwise. Only today's day can be written; other days return ErrNotToday
// and leave the register untouched.
func (svc *Service) Submit(p user.Principal, day string, presentIDs map[int]bool) (Marks, error) {
	if err := p.Require(user.RoleFaculty); err != nil {
		return nil, err
	}
	if !IsToday(day) {
		return nil, ErrNotToday
	}

	students, err := svc.roster.QueryAll()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying students")
	}
	marks := make(Marks, len(students))
	for _, st := range students {
		marks[st.ID] = presentIDs[st.ID]
	}
	if err = svc.SetDay(day, marks); err != nil {
		return nil, err
	}
	return marks, nil
}

// Percentages aggregates, in roster order, the marks of every current student over all recorded days.
func (svc *Service) Percentages() ([]Percentage, error) {
	students, err := svc.roster.QueryAll()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying students")
	}
	reg, err := svc.repo.GetRegister()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "getting register")
	}

	percentages := make([]Percentage, 0, len(students))
	for _, st := range students {
		pct := Percentage{StudentID: st.ID, Name: st.Name}
		for _, marks := range reg {
			if present, ok := marks[st.ID]; ok {
				pct.Total++
				if present {
					pct.Present++
				}
			}
		}
		pct.Percent = formatPercent(pct.Present, pct.Total, "%")
		percentages = append(percentages, pct)
	}
	return percentages, nil
}

// formatPercent renders present/total with one decimal place followed by suffix, or "N/A" when total is 0.
func formatPercent(present, total int, suffix string) string {
	if total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%s", float64(present)/float64(total)*100, suffix)
}
