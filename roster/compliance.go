/*
compliance.go - Static minimum-hour policy

PURPOSE:
  The waitlist's standing entry requirement, evaluated over current totals:

    30 pilot hours minimum, or
    15 pilot hours minimum for anyone with any controlling time.

  Pure query: no mutation, no external calls. Members whose hours have not
  been computed yet are not evaluable and are excluded entirely - a null is
  never treated as zero.
*/
package roster

import "github.com/shopspring/decimal"

// ComplianceChecker evaluates the minimum cumulative-hour policy.
// The zero value is not usable; construct with NewComplianceChecker.
type ComplianceChecker struct {
	// MinPilotHours applies to members with zero controlling hours.
	MinPilotHours decimal.Decimal
	// MinPilotHoursWithATC applies to members with any controlling hours.
	MinPilotHoursWithATC decimal.Decimal
}

func NewComplianceChecker() *ComplianceChecker {
	return &ComplianceChecker{
		MinPilotHours:        decimal.NewFromInt(30),
		MinPilotHoursWithATC: decimal.NewFromInt(15),
	}
}

// Violators returns the CIDs failing the policy, in input order.
func (c *ComplianceChecker) Violators(members []Member) []CID {
	var out []CID
	for _, m := range members {
		if c.violates(m) {
			out = append(out, m.CID)
		}
	}
	return out
}

func (c *ComplianceChecker) violates(m Member) bool {
	if !m.HoursKnown() {
		return false
	}
	if m.ATCHours.IsZero() {
		return m.PilotHours.LessThan(c.MinPilotHours)
	}
	if m.ATCHours.IsPositive() {
		return m.PilotHours.LessThan(c.MinPilotHoursWithATC)
	}
	return false
}
