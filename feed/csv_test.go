package feed_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/waitlist-engine/feed"
	"github.com/warp/waitlist-engine/roster"
)

func TestLoad_MatchesColumnsByName(t *testing.T) {
	// Column order differs from the usual layout and an extra column is
	// present; the header decides what goes where.
	in := "join_date,status,cid\n01/02/2024 10:00:00,ok,1000001\n2024-03-04,ok,1000002\n"

	entries, err := feed.Load(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []roster.RosterEntry{
		{CID: "1000001", JoinDate: "01/02/2024 10:00:00"},
		{CID: "1000002", JoinDate: "2024-03-04"},
	}, entries)
}

func TestLoad_HeaderIsCaseInsensitive(t *testing.T) {
	in := "CID,Join_Date\n1000001,2024-01-01\n"

	entries, err := feed.Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, roster.CID("1000001"), entries[0].CID)
}

func TestLoad_SkipsBlankCIDs(t *testing.T) {
	in := "cid,join_date\n1000001,2024-01-01\n   ,2024-01-02\n1000003,2024-01-03\n"

	entries, err := feed.Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, roster.CID("1000001"), entries[0].CID)
	assert.Equal(t, roster.CID("1000003"), entries[1].CID)
}

func TestLoad_TrimsWhitespace(t *testing.T) {
	in := "cid,join_date\n 1000001 , 2024-01-01 \n"

	entries, err := feed.Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []roster.RosterEntry{{CID: "1000001", JoinDate: "2024-01-01"}}, entries)
}

func TestLoad_MissingColumnsRejected(t *testing.T) {
	_, err := feed.Load(strings.NewReader("cid,signup\n1000001,2024-01-01\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "join_date")
}

func TestLoad_ShortRowRejectedWithRowNumber(t *testing.T) {
	in := "cid,join_date\n1000001,2024-01-01\n1000002\n"

	_, err := feed.Load(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestLoad_EmptyInput(t *testing.T) {
	_, err := feed.Load(strings.NewReader(""))
	require.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := feed.LoadFile("testdata/does-not-exist.csv")
	require.Error(t, err)
}
