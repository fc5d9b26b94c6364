package attendance

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const xlsxSheet = "Attendance"

var reportHeader = []string{"Student Name", "Attendance %"}

// ExportFilter selects the report range and students. The range applies only when both bounds are set.
type ExportFilter struct {
	From       string `form:"from_date" json:"from_date" validate:"isodate"`
	To         string `form:"to_date" json:"to_date" validate:"isodate"`
	StudentIDs []int  `form:"-" json:"student_ids"`
}

type ReportRow struct {
	StudentID int
	Name      string
	Percent   string
	Marks     []string // "P", "A" or "" per report date
}

type Report struct {
	Dates       []string
	Rows        []ReportRow
	GeneratedAt time.Time
}

func invalidDate(field string) error {
	return core.NewValidationError(ErrInvalidDate, core.FieldError{Field: field, Error: "must be a date formatted as YYYY-MM-DD"})
}

// DefaultRange returns the first and last recorded days, or today twice when nothing is recorded.
func (svc *Service) DefaultRange() (from, to string, err error) {
	dates, err := svc.Dates()
	if err != nil {
		return "", "", err
	}
	if len(dates) == 0 {
		today := Today()
		return today, today, nil
	}
	return dates[0], dates[len(dates)-1], nil
}

// Export builds the per-student report over the selected days. Percentages only count the selected days.
// Selected ids missing from the roster are labelled "ID <id>".
func (svc *Service) Export(p user.Principal, filter ExportFilter) (Report, error) {
	if err := p.Require(user.RoleFaculty); err != nil {
		return Report{}, err
	}

	var from, to time.Time
	var err error
	if filter.From != "" {
		if from, err = time.Parse(core.DateLayout, filter.From); err != nil {
			return Report{}, invalidDate("from_date")
		}
	}
	if filter.To != "" {
		if to, err = time.Parse(core.DateLayout, filter.To); err != nil {
			return Report{}, invalidDate("to_date")
		}
	}
	bounded := filter.From != "" && filter.To != ""

	reg, err := svc.repo.GetRegister()
	if err != nil {
		return Report{}, pkgerrors.Wrap(err, "getting register")
	}
	students, err := svc.roster.QueryAll()
	if err != nil {
		return Report{}, pkgerrors.Wrap(err, "querying students")
	}
	names := make(map[int]string, len(students))
	for _, st := range students {
		names[st.ID] = st.Name
	}

	report := Report{GeneratedAt: NowFunc()}
	for _, day := range reg.Dates() {
		d, err := time.Parse(core.DateLayout, day)
		if err != nil {
			continue
		}
		if bounded && (d.Before(from) || d.After(to)) {
			continue
		}
		report.Dates = append(report.Dates, day)
	}

	for _, sid := range uniqueSorted(filter.StudentIDs) {
		name, ok := names[sid]
		if !ok {
			name = fmt.Sprintf("ID %d", sid)
		}
		row := ReportRow{StudentID: sid, Name: name, Marks: make([]string, 0, len(report.Dates))}
		var present, total int
		for _, day := range report.Dates {
			mark, ok := reg.Lookup(day, sid)
			switch {
			case !ok:
				row.Marks = append(row.Marks, "")
				continue
			case mark:
				row.Marks = append(row.Marks, "P")
				present++
			default:
				row.Marks = append(row.Marks, "A")
			}
			total++
		}
		row.Percent = formatPercent(present, total, "")
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

func uniqueSorted(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

func (r Report) Header() []string {
	header := make([]string, 0, len(reportHeader)+len(r.Dates))
	header = append(header, reportHeader...)
	return append(header, r.Dates...)
}

// Records returns the header followed by one record per student.
func (r Report) Records() [][]string {
	records := make([][]string, 0, len(r.Rows)+1)
	records = append(records, r.Header())
	for _, row := range r.Rows {
		rec := make([]string, 0, len(row.Marks)+2)
		rec = append(rec, row.Name, row.Percent)
		records = append(records, append(rec, row.Marks...))
	}
	return records
}

// Filename returns attendance_export_<timestamp>.<format>.
func (r Report) Filename(format string) string {
	return fmt.Sprintf("attendance_export_%s.%s", r.GeneratedAt.Format("20060102_150405"), format)
}

func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(r.Records()); err != nil {
		return pkgerrors.Wrap(err, "writing csv report")
	}
	return nil
}

func (r Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return pkgerrors.Wrap(err, "naming sheet")
	}
	for i, rec := range r.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return pkgerrors.Wrap(err, "locating cell")
		}
		rec := rec
		if err = f.SetSheetRow(xlsxSheet, cell, &rec); err != nil {
			return pkgerrors.Wrapf(err, "writing row %d", i+1)
		}
	}
	return pkgerrors.Wrap(f.Write(w), "writing xlsx report")
}

// Write encodes the report in format (csv when empty).
func (r Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatXLSX:
		return r.WriteXLSX(w)
	case FormatCSV, "":
		return r.WriteCSV(w)
	}
	return pkgerrors.Errorf("unknown export format %q", format)
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
