/*
Package feed reads the authoritative roster snapshot.

PURPOSE:
  The roster arrives as a CSV update file with a header row and (at least)
  cid and join_date columns. The whole file is read into memory as one
  snapshot; the engine never streams it.

  Column order is not assumed - the header is matched by name - and extra
  columns are ignored, so upstream can add fields without breaking the
  reader. Join dates are passed through verbatim; parsing and per-CID error
  reporting happen at window initialization.
*/
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/warp/waitlist-engine/roster"
)

// LoadFile reads a roster snapshot from path.
func LoadFile(path string) ([]roster.RosterEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a roster snapshot from r. The first row is the header and must
// name cid and join_date columns (case-insensitive).
func Load(r io.Reader) ([]roster.RosterEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows rejected below, with row context
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading roster header: %w", err)
	}

	cidCol, joinCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "cid":
			cidCol = i
		case "join_date":
			joinCol = i
		}
	}
	if cidCol < 0 || joinCol < 0 {
		return nil, fmt.Errorf("roster header missing cid/join_date columns: %v", header)
	}

	var entries []roster.RosterEntry
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading roster row %d: %w", row, err)
		}
		if len(record) <= cidCol || len(record) <= joinCol {
			return nil, fmt.Errorf("roster row %d has %d fields, need at least %d", row, len(record), max(cidCol, joinCol)+1)
		}
		cid := roster.NormalizeCID(record[cidCol])
		if cid == "" {
			continue
		}
		entries = append(entries, roster.RosterEntry{
			CID:      cid,
			JoinDate: strings.TrimSpace(record[joinCol]),
		})
	}
	return entries, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
