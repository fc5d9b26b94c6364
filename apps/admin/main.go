package main

import (
	"log"
	"os"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	logsvc "github.com/Shravik17/Attendance-Tracker/services/logger"
	flatfiledb "github.com/Shravik17/Attendance-Tracker/storage/database/flatfile"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := flatfiledb.Open(conf.DataDir, logger)
	if err != nil {
		logger.Fatal("opening data dir", err)
	}

	// start CLI
	studentSvc := student.NewService(flatfiledb.NewStudentRepository(db))
	cli := commandLine{
		out:           os.Stdout,
		dataDir:       db.Dir(),
		studentSvc:    studentSvc,
		attendanceSvc: attendance.NewService(flatfiledb.NewAttendanceRepository(db), studentSvc),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
