package vatsim

import "time"

// =============================================================================
// WIRE TYPES - v2 member API responses
// =============================================================================

// historyResponse is the flight-session endpoint payload:
// GET /v2/members/{cid}/history
type historyResponse struct {
	Items []flightSession `json:"items"`
}

type flightSession struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// atcResponse is the controlling-session endpoint payload:
// GET /v2/members/{cid}/atc
// Connection timestamps are nested under connection_id.
type atcResponse struct {
	Items []atcSession `json:"items"`
}

type atcSession struct {
	Connection atcConnection `json:"connection_id"`
}

type atcConnection struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// statsResponse is the cumulative-snapshot endpoint payload:
// GET /v2/members/{cid}/stats
// Lifetime hour figures per role; pilot stands alone, everything else is
// aggregated into "other hours".
type statsResponse struct {
	Pilot float64 `json:"pilot"`
	ATC   float64 `json:"atc"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`
	C1    float64 `json:"c1"`
	C2    float64 `json:"c2"`
	C3    float64 `json:"c3"`
	I1    float64 `json:"i1"`
	I2    float64 `json:"i2"`
	I3    float64 `json:"i3"`
	Sup   float64 `json:"sup"`
	Adm   float64 `json:"adm"`
}

func (r statsResponse) otherHours() float64 {
	return r.ATC + r.S1 + r.S2 + r.S3 + r.C1 + r.C2 + r.C3 + r.I1 + r.I2 + r.I3 + r.Sup + r.Adm
}

// parseTimestamp accepts the API's ISO-8601 timestamps, Z-suffixed UTC
// included, and normalizes to UTC. A missing or unparsable timestamp yields
// the zero time, which the overlap accumulator skips.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
