// Package roster turns tabular student roster uploads (CSV or XLSX) into rows.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parse errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported roster format")
	ErrEmptyRoster       = errors.New("roster has no data rows")
	ErrTooManyRows       = errors.New("roster exceeds the row limit")
	ErrMissingColumn     = errors.New("missing required column")
)

// RequiredColumns must be present in the header row.
var RequiredColumns = []string{"name", "email", "roll", "password"}

var columnAliases = map[string]string{
	"full name":     "name",
	"full_name":     "name",
	"student name":  "name",
	"e-mail":        "email",
	"mail":          "email",
	"roll no":       "roll",
	"roll_no":       "roll",
	"rollno":        "roll",
	"roll number":   "roll",
	"mobile":        "phone",
	"phone number":  "phone",
	"department":    "branch",
	"gpa":           "cgpa",
	"skill":         "skills",
	"current year":  "year",
	"academic year": "year",
}

// Row is one loosely typed roster entry. Number is the 1-based data row position.
type Row struct {
	Number   int    `json:"row"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Roll     string `json:"roll"`
	Password string `json:"-"`
	Phone    string `json:"phone,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Year     string `json:"year,omitempty"`
	CGPA     string `json:"cgpa,omitempty"`
	Skills   string `json:"skills,omitempty"`
	Address  string `json:"address,omitempty"`
}

// MissingField returns the first required field that is blank, or "".
func (r Row) MissingField() string {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return "name"
	case strings.TrimSpace(r.Email) == "":
		return "email"
	case strings.TrimSpace(r.Roll) == "":
		return "roll"
	case strings.TrimSpace(r.Password) == "":
		return "password"
	}
	return ""
}

// SkillList splits the skills cell on commas or semicolons.
func (r Row) SkillList() []string {
	fields := strings.FieldsFunc(r.Skills, func(c rune) bool { return c == ',' || c == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Options bounds parsing.
type Options struct {
	MaxRows int
}

// Parse detects the format from filename and returns the data rows.
func Parse(ctx context.Context, filename string, r io.Reader, opts Options) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(ctx, r, opts)
	case ".xlsx":
		return ParseXLSX(ctx, r, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

type columnMap map[string]int

func newColumnMap(header []string) (columnMap, error) {
	cols := make(columnMap, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, exists := cols[name]; !exists {
			cols[name] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return cols, nil
}

func (c columnMap) value(record []string, col string) string {
	return strings.TrimSpace(c.raw(record, col))
}

// raw returns the cell exactly as uploaded.
func (c columnMap) raw(record []string, col string) string {
	idx, ok := c[col]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func (c columnMap) rowFrom(record []string, number int) Row {
	return Row{
		Number:   number,
		Name:     c.value(record, "name"),
		Email:    strings.ToLower(c.value(record, "email")),
		Roll:     c.value(record, "roll"),
		Password: c.raw(record, "password"),
		Phone:    c.value(record, "phone"),
		Branch:   c.value(record, "branch"),
		Year:     c.value(record, "year"),
		CGPA:     c.value(record, "cgpa"),
		Skills:   c.value(record, "skills"),
		Address:  c.value(record, "address"),
	}
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func collect(ctx context.Context, header []string, records [][]string, opts Options) ([]Row, error) {
	cols, err := newColumnMap(header)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			return nil, fmt.Errorf("%w (%d)", ErrTooManyRows, opts.MaxRows)
		}
		rows = append(rows, cols.rowFrom(record, len(rows)+1))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}
	return rows, nil
}
