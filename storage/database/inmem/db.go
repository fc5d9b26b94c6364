package inmemdb

import (
	"sync"

	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
)

// DB keeps the roster and the register in memory only.
type DB struct {
	mutex    sync.RWMutex
	roster   student.Roster
	register attendance.Register

	// WriteErr, when set, fails every write before it is applied.
	WriteErr error
	Writes   int
}

func NewDB(students ...student.Student) *DB {
	roster := student.Roster{Students: append([]student.Student(nil), students...)}
	roster.NextID = student.NextIDFor(roster.Students)
	return &DB{roster: roster, register: make(attendance.Register)}
}

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetRoster() (student.Roster, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.roster.Copy(), nil
}

func (repo *studentRepository) SaveRoster(roster student.Roster) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.WriteErr != nil {
		return repo.db.WriteErr
	}
	repo.db.roster = roster.Copy()
	repo.db.Writes++
	return nil
}

func (repo *studentRepository) DeleteStudent(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.WriteErr != nil {
		return repo.db.WriteErr
	}
	students := repo.db.roster.Students[:0:0]
	for _, st := range repo.db.roster.Students {
		if st.ID != id {
			students = append(students, st)
		}
	}
	repo.db.roster.Students = students
	for _, marks := range repo.db.register {
		delete(marks, id)
	}
	repo.db.Writes++
	return nil
}

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) GetRegister() (attendance.Register, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.register.Copy(), nil
}

func (repo *attendanceRepository) SaveDay(day string, marks attendance.Marks) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.WriteErr != nil {
		return repo.db.WriteErr
	}
	repo.db.register[day] = marks.Copy()
	repo.db.Writes++
	return nil
}
