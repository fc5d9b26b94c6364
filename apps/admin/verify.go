package main

import (
	"fmt"

	flatfiledb "github.com/Shravik17/Attendance-Tracker/storage/database/flatfile"
)

// verify reads the data files strictly and stops at the first malformed row.
func (cli *commandLine) verify() error {
	students, marks, err := flatfiledb.Verify(cli.dataDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %d rows OK\n", flatfiledb.StudentsFile, students.Rows)
	fmt.Fprintf(cli.out, "%s: %d rows OK\n", flatfiledb.AttendanceFile, marks.Rows)
	return nil
}
