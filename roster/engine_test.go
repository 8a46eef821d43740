/*
engine_test.go - Shared test infrastructure for the roster engine

Helpers used across the package's tests: decimal literals, canned members,
and a scripted stand-in for the external hours provider.
*/
package roster_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/waitlist-engine/logger"
	"github.com/warp/waitlist-engine/roster"
	memstore "github.com/warp/waitlist-engine/roster/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newMemory(t *testing.T, members ...roster.Member) *memstore.Memory {
	t.Helper()
	m := memstore.NewMemory()
	for _, member := range members {
		require.NoError(t, m.Create(context.Background(), member))
	}
	return m
}

// =============================================================================
// SCRIPTED PROVIDER
// =============================================================================

type providerCall struct {
	CID    roster.CID
	Window roster.Window
}

// stubProvider returns canned results per CID and records every call.
type stubProvider struct {
	strategy roster.Strategy
	results  map[roster.CID]roster.HoursResult
	errs     map[roster.CID]error
	calls    []providerCall
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		strategy: roster.StrategyWindowed,
		results:  make(map[roster.CID]roster.HoursResult),
		errs:     make(map[roster.CID]error),
	}
}

func (p *stubProvider) Strategy() roster.Strategy { return p.strategy }

func (p *stubProvider) Hours(_ context.Context, cid roster.CID, w roster.Window) (roster.HoursResult, error) {
	p.calls = append(p.calls, providerCall{CID: cid, Window: w})
	if err, ok := p.errs[cid]; ok {
		return roster.HoursResult{}, err
	}
	res, ok := p.results[cid]
	if !ok {
		return roster.HoursResult{}, &roster.UnavailableError{CID: cid, Cause: roster.ErrHoursUnavailable}
	}
	return res, nil
}

func (p *stubProvider) set(cid roster.CID, pilot, other string) {
	p.results[cid] = roster.HoursResult{Pilot: dec(pilot), Other: dec(other)}
}

func (p *stubProvider) fail(cid roster.CID) {
	p.errs[cid] = &roster.UnavailableError{CID: cid, Cause: roster.ErrHoursUnavailable}
}

func checkStart(y int, m time.Month) *time.Time {
	t := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

var testLog = logger.Nop
