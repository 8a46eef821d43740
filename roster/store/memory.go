// Package store provides MemberStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/waitlist-engine/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	members map[roster.CID]roster.Member
}

func NewMemory() *Memory {
	return &Memory{members: make(map[roster.CID]roster.Member)}
}

func (m *Memory) Member(_ context.Context, cid roster.CID) (roster.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	member, ok := m.members[cid]
	if !ok {
		return roster.Member{}, roster.ErrMemberNotFound
	}
	return cloneMember(member), nil
}

func (m *Memory) Members(_ context.Context) ([]roster.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(roster.Member) bool { return true }), nil
}

func (m *Memory) CIDs(_ context.Context) ([]roster.CID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cids := make([]roster.CID, 0, len(m.members))
	for cid := range m.members {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })
	return cids, nil
}

func (m *Memory) MembersWithUnknownHours(_ context.Context) ([]roster.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(mm roster.Member) bool { return !mm.HoursKnown() }), nil
}

func (m *Memory) MembersWithoutCheckStart(_ context.Context) ([]roster.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(mm roster.Member) bool { return mm.CheckStart == nil }), nil
}

func (m *Memory) MembersDue(_ context.Context, target time.Time) ([]roster.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(mm roster.Member) bool {
		return mm.CheckStart != nil && mm.CheckStart.Equal(target)
	}), nil
}

func (m *Memory) Create(_ context.Context, member roster.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.members[member.CID]; exists {
		return roster.ErrDuplicateMember
	}
	m.members[member.CID] = cloneMember(member)
	return nil
}

func (m *Memory) Delete(_ context.Context, cid roster.CID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, cid)
	return nil
}

func (m *Memory) SetHours(_ context.Context, cid roster.CID, pilot, atc decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[cid]
	if !ok {
		return roster.ErrMemberNotFound
	}
	member.PilotHours = &pilot
	member.ATCHours = &atc
	m.members[cid] = member
	return nil
}

func (m *Memory) SetCheckStart(_ context.Context, cid roster.CID, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[cid]
	if !ok {
		return roster.ErrMemberNotFound
	}
	member.CheckStart = &start
	m.members[cid] = member
	return nil
}

func (m *Memory) AdvanceWindow(_ context.Context, cid roster.CID, pilot, atc decimal.Decimal, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[cid]
	if !ok {
		return roster.ErrMemberNotFound
	}
	member.PilotHours = &pilot
	member.ATCHours = &atc
	member.CheckStart = &start
	m.members[cid] = member
	return nil
}

// WithTx runs fn against the store directly. The memory store has no real
// transactions; tests that need rollback behavior use the sqlite store.
func (m *Memory) WithTx(_ context.Context, fn func(roster.MemberStore) error) error {
	return fn(m)
}

func (m *Memory) collect(keep func(roster.Member) bool) []roster.Member {
	var out []roster.Member
	for _, member := range m.members {
		if keep(member) {
			out = append(out, cloneMember(member))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CID < out[j].CID })
	return out
}

func cloneMember(m roster.Member) roster.Member {
	out := m
	if m.PilotHours != nil {
		v := *m.PilotHours
		out.PilotHours = &v
	}
	if m.ATCHours != nil {
		v := *m.ATCHours
		out.ATCHours = &v
	}
	if m.CheckStart != nil {
		v := *m.CheckStart
		out.CheckStart = &v
	}
	return out
}
