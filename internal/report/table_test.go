package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendIssueAccumulates(t *testing.T) {
	row := Row{}
	row.AppendIssue("first issue")
	row.AppendIssue("second issue")

	require.Equal(t, "first issue, second issue", row[ColModerationIssue])
}

func TestFilterSharesRows(t *testing.T) {
	table := NewTable([]string{ColSISUserID, ColStatus})
	table.Append(Row{ColSISUserID: "1", ColStatus: StatusGraded})
	table.Append(Row{ColSISUserID: "2", ColStatus: "submitted"})

	filtered := table.Filter(func(r Row) bool { return r[ColStatus] == StatusGraded })
	require.Len(t, filtered.Rows, 1)

	filtered.Rows[0][ColStatus] = "changed"
	require.Equal(t, "changed", table.Rows[0][ColStatus], "filtered rows alias the originals")
}

func TestAddColumnIsIdempotent(t *testing.T) {
	table := NewTable([]string{ColSISUserID})
	table.AddColumn(ColTotalWords)
	table.AddColumn(ColTotalWords)

	require.Equal(t, []string{ColSISUserID, ColTotalWords}, table.Headers)
}

func TestRowFloat(t *testing.T) {
	row := Row{ColScore: " 85.5 ", ColGrader: "Jones"}

	v, ok := row.Float(ColScore)
	require.True(t, ok)
	require.InDelta(t, 85.5, v, 1e-9)

	_, ok = row.Float(ColGrader)
	require.False(t, ok)

	_, ok = row.Float("missing")
	require.False(t, ok)
}

func TestFormatFloat(t *testing.T) {
	require.Equal(t, "85", FormatFloat(85))
	require.Equal(t, "85.5", FormatFloat(85.5))
	require.Equal(t, "0", FormatFloat(0))
}
