package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/waitlist-engine/api"
	"github.com/warp/waitlist-engine/logger"
	"github.com/warp/waitlist-engine/roster"
	"github.com/warp/waitlist-engine/roster/store"
)

// fixedProvider serves canned hour totals, or unavailability for CIDs it
// does not know about.
type fixedProvider struct {
	hours map[roster.CID]roster.HoursResult
}

func (p fixedProvider) Hours(_ context.Context, cid roster.CID, _ roster.Window) (roster.HoursResult, error) {
	res, ok := p.hours[cid]
	if !ok {
		return roster.HoursResult{}, &roster.UnavailableError{CID: cid, Cause: errors.New("no record")}
	}
	return res, nil
}

func (p fixedProvider) Strategy() roster.Strategy { return roster.StrategyWindowed }

type fixture struct {
	store  *store.Memory
	router http.Handler
}

func newFixture(t *testing.T, entries []roster.RosterEntry, hours map[roster.CID]roster.HoursResult) *fixture {
	t.Helper()
	mem := store.NewMemory()
	log := logger.Nop()
	orch := roster.NewOrchestrator(mem, fixedProvider{hours: hours}, log)
	loader := func() ([]roster.RosterEntry, error) { return entries, nil }
	h := api.NewHandler(mem, orch, loader, log)
	return &fixture{store: mem, router: api.NewRouter(h)}
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListMembers(t *testing.T) {
	f := newFixture(t, nil, nil)
	require.NoError(t, f.store.Create(context.Background(), roster.Member{
		CID:          "1000001",
		ListJoinDate: "2024-01-15",
		PilotHours:   roster.HoursPtr(42),
		ATCHours:     roster.HoursPtr(0),
	}))
	require.NoError(t, f.store.Create(context.Background(), roster.Member{
		CID:          "1000002",
		ListJoinDate: "2024-02-01",
	}))

	rec := f.do(t, http.MethodGet, "/api/members")
	require.Equal(t, http.StatusOK, rec.Code)

	members := decodeJSON[[]api.MemberDTO](t, rec)
	require.Len(t, members, 2)
	assert.Equal(t, "1000001", members[0].CID)
	require.NotNil(t, members[0].PilotHours)
	assert.Equal(t, 42.0, *members[0].PilotHours)
	// Unknown hours stay null on the wire, never zero.
	assert.Nil(t, members[1].PilotHours)
	assert.Nil(t, members[1].ATCHours)
}

func TestGetMember(t *testing.T) {
	f := newFixture(t, nil, nil)
	require.NoError(t, f.store.Create(context.Background(), roster.Member{
		CID:          "1000001",
		ListJoinDate: "2024-01-15",
	}))

	rec := f.do(t, http.MethodGet, "/api/members/1000001")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeJSON[api.MemberDTO](t, rec)
	assert.Equal(t, "2024-01-15", m.JoinDate)
	assert.Nil(t, m.CheckStart)
}

func TestGetMember_NotFound(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/api/members/9999999")
	require.Equal(t, http.StatusNotFound, rec.Code)
	e := decodeJSON[api.ErrorResponse](t, rec)
	assert.Equal(t, "member not found", e.Error)
}

func TestLastReport_BeforeAnyRun(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/api/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriggerRun(t *testing.T) {
	entries := []roster.RosterEntry{
		{CID: "1000001", JoinDate: "01/02/2024 10:00:00"},
		{CID: "1000002", JoinDate: "2024-02-01"},
	}
	hours := map[roster.CID]roster.HoursResult{
		"1000001": {Pilot: decimal.NewFromInt(50), Other: decimal.Zero},
		"1000002": {Pilot: decimal.NewFromInt(5), Other: decimal.Zero},
	}
	f := newFixture(t, entries, hours)

	rec := f.do(t, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	report := decodeJSON[api.ReportDTO](t, rec)
	assert.ElementsMatch(t, []string{"1000001", "1000002"}, report.Added)
	assert.Empty(t, report.Removed)
	assert.Equal(t, []string{"1000002"}, report.Violators)

	// The same report is now served on GET.
	rec = f.do(t, http.MethodGet, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	again := decodeJSON[api.ReportDTO](t, rec)
	assert.Equal(t, report.RanAt, again.RanAt)
}

func TestTriggerRun_UnavailableHoursReported(t *testing.T) {
	entries := []roster.RosterEntry{{CID: "1000001", JoinDate: "2024-02-01"}}
	f := newFixture(t, entries, nil) // provider knows nobody

	rec := f.do(t, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	report := decodeJSON[api.ReportDTO](t, rec)
	assert.Equal(t, []string{"1000001"}, report.Unavailable)
	// Hours must stay null, not zero-filled.
	m, err := f.store.Member(context.Background(), "1000001")
	require.NoError(t, err)
	assert.Nil(t, m.PilotHours)
}

func TestTriggerRun_RosterLoadFailure(t *testing.T) {
	mem := store.NewMemory()
	log := logger.Nop()
	orch := roster.NewOrchestrator(mem, fixedProvider{}, log)
	loader := func() ([]roster.RosterEntry, error) { return nil, errors.New("feed offline") }
	f := &fixture{store: mem, router: api.NewRouter(api.NewHandler(mem, orch, loader, log))}

	rec := f.do(t, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeJSON[api.ErrorResponse](t, rec)
	assert.Contains(t, e.Details, "feed offline")
}
