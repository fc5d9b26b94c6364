package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/attendance"
)

func (cli *commandLine) export(from, to, ids, format, out string) error {
	filter := attendance.ExportFilter{From: from, To: to}
	if strings.EqualFold(strings.TrimSpace(ids), "all") {
		students, err := cli.studentSvc.QueryAll()
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		for _, st := range students {
			filter.StudentIDs = append(filter.StudentIDs, st.ID)
		}
	} else {
		for _, raw := range strings.Split(ids, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return errors.Errorf("invalid student id %q", raw)
			}
			filter.StudentIDs = append(filter.StudentIDs, id)
		}
	}
	if format != attendance.FormatCSV && format != attendance.FormatXLSX {
		return errors.Errorf("unknown export format %q", format)
	}

	report, err := cli.attendanceSvc.Export(facultyOperator, filter)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			fmt.Fprintln(cli.out, core.FirstError(vErr, nil))
		}
		return err
	}
	if out == "" {
		out = report.Filename(format)
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating report file")
	}
	if err = report.Write(f, format); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing report file")
	}
	fmt.Fprintf(cli.out, "Exported %d students over %d days to %s\n", len(report.Rows), len(report.Dates), out)
	return nil
}
