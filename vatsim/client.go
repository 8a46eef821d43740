/*
Package vatsim implements the external hours source.

PURPOSE:
  Fetches a member's accrued hours from the network's v2 member API, in one
  of two strategies selected by configuration:

  Windowed (StrategyWindowed):
    Two endpoints return full session history (flight and controlling); the
    provider applies the overlap accumulator against the caller's window.
    The server does no time-range filtering, so two calls per member are
    unavoidable and each pays the pacing delay.

  Snapshot (StrategySnapshot):
    One endpoint returns lifetime cumulative figures; the provider sums the
    non-pilot role figures into "other hours". The caller diffs against its
    stored baseline.

FAILURE CONTRACT:
  Transport failures and non-success statuses map to
  roster.UnavailableError. Zero is NEVER substituted for a failed fetch - a
  false zero would manufacture policy violations downstream.

PACING & RETRY:
  Every request, including each retry attempt, waits on the shared Pacer
  first. Retries are few and backed off; they exist for transient transport
  errors and 5xx/429 responses, not to mask a down source.
*/
package vatsim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/waitlist-engine/roster"
)

// DefaultBaseURL is the production member API.
const DefaultBaseURL = "https://api.vatsim.net"

// sessionLimit caps how many sessions one fetch returns. Matches the
// deployed tool; nobody on the waitlist has more history than this.
const sessionLimit = 10000

// Client is the shared HTTP layer under both provider strategies.
type Client struct {
	baseURL string
	http    *http.Client
	pacer   *Pacer
	log     *zap.SugaredLogger
}

func NewClient(baseURL string, pacer *Pacer, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		pacer:   pacer,
		log:     log,
	}
}

// statusError is a non-success response. Terminal for the member this
// cycle unless the status is retryable (429/5xx).
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func retryable(err error) bool {
	if se, ok := err.(*statusError); ok {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// Transport-level errors are worth a retry.
	return true
}

// getJSON fetches one API path into out, pacing before every attempt.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return retry.Do(func() error {
		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return &statusError{status: resp.StatusCode}
		}
		return json.NewDecoder(resp.Body).Decode(out)
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(2*time.Second),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && retryable(err)
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warnw("retrying fetch", "path", path, "attempt", n+1, "err", err)
		}),
	)
}

// =============================================================================
// WINDOWED PROVIDER - session aggregation
// =============================================================================

// SessionProvider implements roster.StrategyWindowed: fetch both session
// histories and sum their overlap with the caller's window.
type SessionProvider struct {
	client *Client
}

func NewSessionProvider(client *Client) *SessionProvider {
	return &SessionProvider{client: client}
}

func (p *SessionProvider) Strategy() roster.Strategy { return roster.StrategyWindowed }

func (p *SessionProvider) Hours(ctx context.Context, cid roster.CID, w roster.Window) (roster.HoursResult, error) {
	var history historyResponse
	path := fmt.Sprintf("/v2/members/%s/history?limit=%d", cid, sessionLimit)
	if err := p.client.getJSON(ctx, path, &history); err != nil {
		return roster.HoursResult{}, &roster.UnavailableError{CID: cid, Cause: err}
	}

	var atc atcResponse
	path = fmt.Sprintf("/v2/members/%s/atc?limit=%d", cid, sessionLimit)
	if err := p.client.getJSON(ctx, path, &atc); err != nil {
		return roster.HoursResult{}, &roster.UnavailableError{CID: cid, Cause: err}
	}

	flights := make([]roster.Session, 0, len(history.Items))
	for _, s := range history.Items {
		flights = append(flights, roster.Session{
			Start: parseTimestamp(s.Start),
			End:   parseTimestamp(s.End),
		})
	}
	controls := make([]roster.Session, 0, len(atc.Items))
	for _, s := range atc.Items {
		controls = append(controls, roster.Session{
			Start: parseTimestamp(s.Connection.Start),
			End:   parseTimestamp(s.Connection.End),
		})
	}

	return roster.HoursResult{
		Pilot: roster.OverlapHours(w, flights),
		Other: roster.OverlapHours(w, controls),
	}, nil
}

// =============================================================================
// SNAPSHOT PROVIDER - cumulative lifetime figures
// =============================================================================

// SnapshotProvider implements roster.StrategySnapshot: one lifetime record
// per member, window ignored.
type SnapshotProvider struct {
	client *Client
}

func NewSnapshotProvider(client *Client) *SnapshotProvider {
	return &SnapshotProvider{client: client}
}

func (p *SnapshotProvider) Strategy() roster.Strategy { return roster.StrategySnapshot }

func (p *SnapshotProvider) Hours(ctx context.Context, cid roster.CID, _ roster.Window) (roster.HoursResult, error) {
	var stats statsResponse
	path := fmt.Sprintf("/v2/members/%s/stats", cid)
	if err := p.client.getJSON(ctx, path, &stats); err != nil {
		return roster.HoursResult{}, &roster.UnavailableError{CID: cid, Cause: err}
	}

	return roster.HoursResult{
		Pilot: decimal.NewFromFloat(stats.Pilot),
		Other: decimal.NewFromFloat(stats.otherHours()),
	}, nil
}

// NewProvider constructs the configured strategy's provider.
func NewProvider(strategy roster.Strategy, client *Client) (roster.HoursProvider, error) {
	switch strategy {
	case roster.StrategyWindowed:
		return NewSessionProvider(client), nil
	case roster.StrategySnapshot:
		return NewSnapshotProvider(client), nil
	default:
		return nil, fmt.Errorf("unknown hours strategy %q", strategy)
	}
}
