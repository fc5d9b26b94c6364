package flatfiledb

import (
	"github.com/Shravik17/Attendance-Tracker/core/student"
)

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

	roster = roster.Copy()
	if err := repo.db.saveStudents(roster.Students); err != nil {
		return err
	}
	repo.db.roster = roster
	return nil
}

func (repo *studentRepository) DeleteStudent(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	roster := repo.db.roster.Copy()
	students := roster.Students[:0]
	for _, st := range roster.Students {
		if st.ID != id {
			students = append(students, st)
		}
	}
	roster.Students = students
	if err := repo.db.saveStudents(roster.Students); err != nil {
		return err
	}
	repo.db.roster = roster

	reg := repo.db.register.Copy()
	for _, marks := range reg {
		delete(marks, id)
	}
	if err := repo.db.saveAttendance(reg); err != nil {
		return err
	}
	repo.db.register = reg
	return nil
}
