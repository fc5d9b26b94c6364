package attendance

import (
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
)

// Period is a calendar month. Month may sit one step outside 1..12 and is rolled over once.
type Period struct {
	Year  int
	Month int
}

// Normalize applies a single-step rollover: month < 1 becomes December of the previous year
// and month > 12 becomes January of the next year.
func (p Period) Normalize() Period {
	switch {
	case p.Month < 1:
		return Period{Year: p.Year - 1, Month: 12}
	case p.Month > 12:
		return Period{Year: p.Year + 1, Month: 1}
	}
	return p
}

func (p Period) Prev() Period { return Period{Year: p.Year, Month: p.Month - 1}.Normalize() }

func (p Period) Next() Period { return Period{Year: p.Year, Month: p.Month + 1}.Normalize() }

func (p Period) MonthName() string { return time.Month(p.Month).String() }

// Day is a non-empty calendar cell.
type Day struct {
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Present *bool  `json:"present"` // nil when no mark was recorded
	IsToday bool   `json:"is_today"`
}

// Week always holds 7 cells, Monday first; nil cells pad the first and last week.
type Week [7]*Day

type Calendar struct {
	StudentID   int    `json:"student_id"`
	StudentName string `json:"student_name"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	MonthName   string `json:"month_name"`
	Weeks       []Week `json:"weeks"`
	Prev        Period `json:"prev"`
	Next        Period `json:"next"`
}

// Calendar builds the monthly attendance grid of a student. A nil period means the current month.
// It returns student.ErrNotFound for unknown students.
func (svc *Service) Calendar(studentID int, period *Period) (Calendar, error) {
	st, err := svc.roster.GetByID(studentID)
	if err != nil {
		return Calendar{}, err
	}
	reg, err := svc.repo.GetRegister()
	if err != nil {
		return Calendar{}, pkgerrors.Wrap(err, "getting register")
	}

	now := NowFunc()
	p := Period{Year: now.Year(), Month: int(now.Month())}
	if period != nil {
		p = period.Normalize()
	}
	if p.Year < 1 || p.Year > 9999 {
		return Calendar{}, ErrInvalidPeriod
	}

	return Calendar{
		StudentID:   st.ID,
		StudentName: st.Name,
		Year:        p.Year,
		Month:       p.Month,
		MonthName:   p.MonthName(),
		Weeks:       BuildGrid(p, now, func(day string) *bool { return presence(reg, day, st.ID) }),
		Prev:        p.Prev(),
		Next:        p.Next(),
	}, nil
}

func presence(reg Register, day string, sid int) *bool {
	if present, ok := reg.Lookup(day, sid); ok {
		return &present
	}
	return nil
}

// BuildGrid lays out the days of p in Monday-first weeks. lookup returns the presence of a day, or nil.
func BuildGrid(p Period, today time.Time, lookup func(day string) *bool) []Week {
	first := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	numDays := first.AddDate(0, 1, -1).Day()
	todayStr := today.Format(core.DateLayout)

	var (
		weeks []Week
		week  Week
	)
	col := weekdayIndex(first.Weekday())
	for d := 1; d <= numDays; d++ {
		date := first.AddDate(0, 0, d-1).Format(core.DateLayout)
		week[col] = &Day{Day: d, Date: date, Present: lookup(date), IsToday: date == todayStr}
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = Week{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// weekdayIndex maps time.Weekday onto a Monday = 0 index.
func weekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
