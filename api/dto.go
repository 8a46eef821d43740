/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  JSON structures for the report surface. These decouple the internal
  domain model (decimal hour totals, time.Time anchors) from the wire
  contract: hours cross the API rounded to two decimal places as floats,
  dates as YYYY-MM-DD strings, nulls as JSON null.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/waitlist-engine/roster"
)

// MemberDTO represents one waitlist row in API responses.
type MemberDTO struct {
	CID        string   `json:"cid"`
	JoinDate   string   `json:"list_join_date"`
	PilotHours *float64 `json:"pilot_hours"`
	ATCHours   *float64 `json:"atc_hours"`
	CheckStart *string  `json:"check_start_date"`
}

// ReportDTO represents the outcome of a run.
type ReportDTO struct {
	RanAt       string    `json:"ran_at"`
	Added       []string  `json:"added"`
	Removed     []string  `json:"removed"`
	Violators   []string  `json:"minimum_hour_violators"`
	Active      []string  `json:"active"`
	Inactive    []string  `json:"inactive"`
	Unavailable []string  `json:"unavailable"`
	InitSkipped []SkipDTO `json:"init_skipped,omitempty"`
}

// SkipDTO is a per-CID initialization failure.
type SkipDTO struct {
	CID    string `json:"cid"`
	Reason string `json:"reason"`
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toMemberDTO(m roster.Member) MemberDTO {
	dto := MemberDTO{
		CID:      string(m.CID),
		JoinDate: m.ListJoinDate,
	}
	dto.PilotHours = roundedHours(m.PilotHours)
	dto.ATCHours = roundedHours(m.ATCHours)
	if m.CheckStart != nil {
		s := m.CheckStart.Format(roster.DateLayout)
		dto.CheckStart = &s
	}
	return dto
}

func toReportDTO(r *roster.Report) ReportDTO {
	dto := ReportDTO{
		RanAt:       r.RanAt.Format(time.RFC3339),
		Added:       cidStrings(r.Added),
		Removed:     cidStrings(r.Removed),
		Violators:   cidStrings(r.Violators),
		Active:      cidStrings(r.Active),
		Inactive:    cidStrings(r.Inactive),
		Unavailable: cidStrings(r.Unavailable),
	}
	for _, e := range r.InitSkipped {
		dto.InitSkipped = append(dto.InitSkipped, SkipDTO{CID: string(e.CID), Reason: e.Err.Error()})
	}
	return dto
}

func cidStrings(cids []roster.CID) []string {
	out := make([]string, 0, len(cids))
	for _, cid := range cids {
		out = append(out, string(cid))
	}
	return out
}

func roundedHours(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f, _ := roster.RoundHours(*d).Float64()
	return &f
}
