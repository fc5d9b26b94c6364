package attendance

import "sort"

// Marks maps a student id to its presence on one day.
type Marks map[int]bool

func (m Marks) Copy() Marks {
	cp := make(Marks, len(m))
	for sid, present := range m {
		cp[sid] = present
	}
	return cp
}

// Register maps a day (YYYY-MM-DD) to the marks recorded that day.
type Register map[string]Marks

func (r Register) Copy() Register {
	cp := make(Register, len(r))
	for day, marks := range r {
		cp[day] = marks.Copy()
	}
	return cp
}

// Dates returns the recorded days in ascending order.
func (r Register) Dates() []string {
	dates := make([]string, 0, len(r))
	for day := range r {
		dates = append(dates, day)
	}
	sort.Strings(dates)
	return dates
}

// Lookup returns the presence of sid on day and whether a mark exists.
func (r Register) Lookup(day string, sid int) (present, ok bool) {
	marks, found := r[day]
	if !found {
		return false, false
	}
	present, ok = marks[sid]
	return present, ok
}

// Percentage is one student's aggregate over every recorded mark.
type Percentage struct {
	StudentID int    `json:"student_id"`
	Name      string `json:"name"`
	Present   int    `json:"present"`
	Total     int    `json:"total"`
	Percent   string `json:"percent"`
}
