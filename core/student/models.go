package student

import "github.com/Shravik17/Attendance-Tracker/core"

type Student struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Roster is the ordered set of students plus the identifier high-water mark.
type Roster struct {
	Students []Student
	NextID   int
}

// NextIDFor returns the first identifier to hand out after the given students.
func NextIDFor(students []Student) int {
	var max int
	for _, st := range students {
		if st.ID > max {
			max = st.ID
		}
	}
	return max + 1
}

func (r Roster) Copy() Roster {
	students := make([]Student, len(r.Students))
	copy(students, r.Students)
	return Roster{Students: students, NextID: r.NextID}
}

func (r Roster) Get(id int) (Student, bool) {
	for _, st := range r.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// NewStudent contains information needed to add a Student by hand.
type NewStudent struct {
	Name string `form:"student_name" json:"name"`
}

// Clean trims the name; an empty result means there is nothing to add.
func (ns *NewStudent) Clean() bool {
	ns.Name = core.CleanString(ns.Name)
	return ns.Name != ""
}
