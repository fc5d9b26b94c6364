package flatfiledb

import (
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
)

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

	reg := repo.db.register.Copy()
	reg[day] = marks.Copy()
	if err := repo.db.saveAttendance(reg); err != nil {
		return err
	}
	repo.db.register = reg
	return nil
}
