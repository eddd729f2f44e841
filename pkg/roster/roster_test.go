package roster

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "Full Name,Email,Roll No,Password,Branch,Year,CGPA,Skills\n" +
		"Asha Rao,ASHA@college.edu,CS001,secret,CS,3,8.1,\"go, sql;docker\"\n" +
		",,,,,,,\n" +
		"Ravi,ravi@college.edu,CS002,,IT,2,6.9,\n"

	rows, err := Parse(context.Background(), "students.csv", strings.NewReader(input), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Number)
	assert.Equal(t, "Asha Rao", rows[0].Name)
	assert.Equal(t, "asha@college.edu", rows[0].Email)
	assert.Equal(t, "CS001", rows[0].Roll)
	assert.Equal(t, []string{"go", "sql", "docker"}, rows[0].SkillList())
	assert.Empty(t, rows[0].MissingField())

	assert.Equal(t, 2, rows[1].Number)
	assert.Equal(t, "password", rows[1].MissingField())
}

func TestParseKeepsPasswordCellVerbatim(t *testing.T) {
	input := "name,email,roll,password\n" +
		" Asha , asha@college.edu ,CS001,\"  pass phrase \"\n" +
		"Ravi,ravi@college.edu,CS002,\"   \"\n"

	rows, err := Parse(context.Background(), "students.txt", strings.NewReader(input), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Asha", rows[0].Name)
	assert.Equal(t, "asha@college.edu", rows[0].Email)
	assert.Equal(t, "  pass phrase ", rows[0].Password)
	assert.Empty(t, rows[0].MissingField())
	assert.Equal(t, "password", rows[1].MissingField())
}

func TestParseCSVMissingColumn(t *testing.T) {
	_, err := ParseCSV(context.Background(), strings.NewReader("name,email,roll\nA,a@x.io,1\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestParseCSVRowLimit(t *testing.T) {
	input := "name,email,roll,password\nA,a@x.io,1,p\nB,b@x.io,2,p\n"
	_, err := ParseCSV(context.Background(), strings.NewReader(input), Options{MaxRows: 1})
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(context.Background(), "students.pdf", strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"name", "email", "roll", "password", "phone"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Meera", "meera@college.edu", "EC010", "pw", "99999"}))
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))

	rows, err := Parse(context.Background(), "Roster.XLSX", buf, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Meera", rows[0].Name)
	assert.Equal(t, "99999", rows[0].Phone)
}
