package extract

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/pkg/dwload"
)

var regionKeyRule = []catalog.Rule{{Column: "regionkey", Coercion: catalog.NullableInt}}

func readAll(t *testing.T, b []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNullableInt(t *testing.T) {
	tests := map[string]string{
		"2.0":       "2",
		"2":         "2",
		" 7 ":       "7",
		"-3":        "-3",
		"-3.9":      "-3",
		"4.99":      "4",
		"1e3":       "1000",
		"nan":       Absent,
		"NaN":       Absent,
		"":          Absent,
		"abc":       Absent,
		"inf":       Absent,
		"-Infinity": Absent,
		"1e400":     Absent,
		"1e19":      Absent,
	}
	for in, want := range tests {
		assert.Equal(t, want, NullableInt(in), "NullableInt(%q)", in)
	}
}

var pnlColumns = []string{"datekey", "glaccountkey", "regionkey", "amount", "currency"}

func TestProject_CoercesRegionKey(t *testing.T) {
	src := "datekey,glaccountkey,regionkey,amount,currency\n" +
		"20250201,1,2.0,10.5,EUR\n" +
		"20250201,1,2,11.5,EUR\n" +
		"20250201,1,nan,12.5,EUR\n" +
		"20250201,1,,13.5,EUR\n" +
		"20250201,1,abc,14.5,EUR\n"

	var out bytes.Buffer
	rows, err := Project(strings.NewReader(src), &out, pnlColumns, regionKeyRule)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rows)

	records := readAll(t, out.Bytes())
	require.Len(t, records, 6)
	assert.Equal(t, []string{"datekey", "glaccountkey", "regionkey", "amount", "currency"}, records[0])

	var got []string
	for _, rec := range records[1:] {
		got = append(got, rec[2])
	}
	assert.Equal(t, []string{"2", "2", Absent, Absent, Absent}, got)

	assert.Equal(t, "20250201,1,,12.5,EUR", strings.Split(out.String(), "\n")[3], "absence marker must be an unquoted empty field")
	assert.Equal(t, "10.5", records[1][3], "columns without a rule are untouched")
}

func TestProject_MissingRuleColumn(t *testing.T) {
	var out bytes.Buffer
	_, err := Project(strings.NewReader("datekey,amount\n1,2\n"), &out, []string{"datekey", "amount", "regionkey"}, regionKeyRule)
	assert.ErrorIs(t, err, dwload.ErrMalformedExtract)
}

func TestProject_RuleOutsideColumns(t *testing.T) {
	var out bytes.Buffer
	_, err := Project(strings.NewReader("datekey,regionkey\n1,2\n"), &out, []string{"datekey"}, regionKeyRule)
	assert.ErrorIs(t, err, dwload.ErrInvalidConfig)
}

func TestProject_SubsetsAndReordersColumns(t *testing.T) {
	src := "currency,extra_column,amount,regionkey,glaccountkey,datekey\n" +
		"EUR,ignored,1.5,3.0,9,20250201\n" +
		"USD,ignored,2.5,,9,20250201\n"

	cols := []string{"datekey", "glaccountkey", "regionkey", "amount", "currency"}
	var out bytes.Buffer
	rows, err := Project(strings.NewReader(src), &out, cols, regionKeyRule)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	assert.Equal(t, [][]string{
		cols,
		{"20250201", "9", "3", "1.5", "EUR"},
		{"20250201", "9", "", "2.5", "USD"},
	}, readAll(t, out.Bytes()))
}

func TestProject_MissingMappedColumn(t *testing.T) {
	var out bytes.Buffer
	_, err := Project(strings.NewReader("datekey,amount\n1,2\n"), &out, []string{"datekey", "amount", "currency"}, nil)
	require.ErrorIs(t, err, dwload.ErrMalformedExtract)
	assert.Contains(t, err.Error(), "currency")
}

func TestProject_NoColumns(t *testing.T) {
	var out bytes.Buffer
	_, err := Project(strings.NewReader("a\n1\n"), &out, nil, nil)
	assert.ErrorIs(t, err, dwload.ErrInvalidConfig)
}

func TestTransform_MalformedInput(t *testing.T) {
	tests := map[string]string{
		"empty file":          "",
		"blank lines only":    "\n\r\n\n",
		"ragged row":          "a,b\n1,2\n3\n",
		"long row":            "a,b\n1,2,3\n",
		"unclosed quote":      "a,b\n1,\"2\n",
		"bare quote":          "a,b\n1,2\"x\n",
		"text after a quote":  "a,b\n1,\"2\"x\n",
		"quote then lone CR":  "a,b\n1,\"2\"\rx\n",
		"ragged after quotes": "a,b\n\"1\"\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Project(strings.NewReader(src), &out, []string{"a", "b"}, nil)
			assert.ErrorIs(t, err, dwload.ErrMalformedExtract)
		})
	}
}

func TestTransform_HeaderOnly(t *testing.T) {
	var out bytes.Buffer
	rows, err := Project(strings.NewReader("datekey,amount\n"), &out, []string{"amount"}, nil)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Equal(t, "amount\n", out.String())
}

func TestTransform_StripsByteOrderMark(t *testing.T) {
	var out bytes.Buffer
	rows, err := Project(strings.NewReader("\ufeffdatekey,amount\n20250201,4\n"), &out, []string{"datekey"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, "datekey\n20250201\n", out.String())
}

func TestTransform_QuotesValuesThatNeedIt(t *testing.T) {
	var out bytes.Buffer
	_, err := Project(strings.NewReader("name,code\n\"Smith, J\",\\.\n"), &out, []string{"name", "code"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "name,code\n\"Smith, J\",\"\\.\"\n", out.String())
}

func TestProject_KeepsQuotedEmptyStrings(t *testing.T) {
	src := "customercode,customername\nC1,\"\"\nC2,\n"

	var out bytes.Buffer
	rows, err := Project(strings.NewReader(src), &out, []string{"customercode", "customername"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, "customercode,customername\nC1,\"\"\nC2,\n", out.String(),
		"a quoted empty value loads as an empty string, a bare one as NULL")
}

func TestProject_CoercedValuesAreBare(t *testing.T) {
	src := "datekey,glaccountkey,regionkey,amount,currency\n" +
		"20250201,1,\"nan\",1.0,\"\"\n" +
		"20250201,1,\"\",2.0,EUR\n" +
		"20250201,1,\"4.0\",3.0,EUR\n"

	var out bytes.Buffer
	rows, err := Project(strings.NewReader(src), &out, pnlColumns, regionKeyRule)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
	assert.Equal(t, "datekey,glaccountkey,regionkey,amount,currency\n"+
		"20250201,1,,1.0,\"\"\n"+
		"20250201,1,,2.0,EUR\n"+
		"20250201,1,4,3.0,EUR\n", out.String())
}

func TestProject_QuotedFieldContents(t *testing.T) {
	src := "id,note\r\n" +
		"1,\"two\r\nlines\"\r\n" +
		"\r\n" +
		"2,\"say \"\"hi\"\"\"\r\n" +
		"3,\"plain\""

	var out bytes.Buffer
	rows, err := Project(strings.NewReader(src), &out, []string{"note", "id"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
	assert.Equal(t, [][]string{
		{"note", "id"},
		{"two\nlines", "1"},
		{`say "hi"`, "2"},
		{"plain", "3"},
	}, readAll(t, out.Bytes()))
	assert.Contains(t, out.String(), "\"two\r\nlines\",1\n", "line breaks inside quotes are kept as read")
}

func TestProject_TrailingEmptyField(t *testing.T) {
	var out bytes.Buffer
	rows, err := Project(strings.NewReader("a,b\n1,"), &out, []string{"b", "a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, "b,a\n,1\n", out.String())
}
