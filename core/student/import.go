package student

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Import merges an uploaded CSV file into the roster and reports how many students were added.
// Content that is not valid UTF-8 is read as Latin-1.
func (svc *Service) Import(p user.Principal, filename string, content []byte) (int, error) {
	if err := p.Require(user.RoleAdmin); err != nil {
		return 0, err
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return 0, ErrNotCSV
	}

	text, err := decodeUpload(content)
	if err != nil {
		return 0, pkgerrors.Wrap(ErrMalformedCSV, err.Error())
	}
	rdr := csv.NewReader(strings.NewReader(text))
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true
	rows, err := rdr.ReadAll()
	if err != nil {
		return 0, pkgerrors.Wrap(ErrMalformedCSV, err.Error())
	}
	return svc.ImportRows(p, rows)
}

func decodeUpload(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(bytes.TrimPrefix(content, utf8BOM)), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// isHeaderRow recognises a header by "id" in the first cell or "name" in the second.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	if core.CleanString(row[0], true /* lower */) == "id" {
		return true
	}
	return len(row) > 1 && core.CleanString(row[1], true /* lower */) == "name"
}

func columnIndex(header []string, col string, fallback int) int {
	for i, h := range header {
		if h == col {
			return i
		}
	}
	return fallback
}

// ImportRows merges parsed CSV rows into the roster and persists it once at the end.
//
// With a header row, the "id" and "name" columns are located by name (name defaults to the first column).
// Explicit ids push the identifier counter past them, even when the row is later skipped.
// Rows whose id or name already exist in the roster, including rows accepted earlier in the batch, are skipped.
// Without a header, the first cell of each row is a bare name.
func (svc *Service) ImportRows(p user.Principal, rows [][]string) (int, error) {
	if err := p.Require(user.RoleAdmin); err != nil {
		return 0, err
	}

	roster, err := svc.repo.GetRoster()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "getting roster")
	}

	var header []string
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		header = make([]string, len(rows[0]))
		for i, col := range rows[0] {
			header[i] = core.CleanString(col, true /* lower */)
		}
		rows = rows[1:]
	}
	idIdx := columnIndex(header, "id", -1)
	nameIdx := columnIndex(header, "name", 0)

	existingIDs := make(map[int]bool, len(roster.Students))
	existingNames := make(map[string]bool, len(roster.Students))
	for _, st := range roster.Students {
		existingIDs[st.ID] = true
		existingNames[st.Name] = true
	}

	var added int
	for _, row := range rows {
		if core.IsBlank(row) {
			continue
		}

		if header == nil {
			name := core.CleanString(row[0])
			if name == "" || existingNames[name] {
				continue
			}
			roster.Students = append(roster.Students, Student{ID: roster.NextID, Name: name})
			roster.NextID++
			existingNames[name] = true
			added++
			continue
		}

		var sid int
		hasID := false
		if idIdx != -1 && len(row) > idIdx {
			if raw := core.CleanString(row[idIdx]); raw != "" {
				if n, err := strconv.Atoi(raw); err == nil {
					if n >= roster.NextID {
						roster.NextID = n + 1
					}
					sid, hasID = n, true
				}
			}
		}

		var name string
		if len(row) > nameIdx {
			name = core.CleanString(row[nameIdx])
		}
		if name == "" {
			continue
		}
		if !hasID {
			sid = roster.NextID
			roster.NextID++
		}
		if existingIDs[sid] || existingNames[name] {
			continue
		}
		roster.Students = append(roster.Students, Student{ID: sid, Name: name})
		existingIDs[sid] = true
		existingNames[name] = true
		added++
	}

	if err = svc.repo.SaveRoster(roster); err != nil {
		return 0, pkgerrors.Wrap(err, "saving roster")
	}
	return added, nil
}
