// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"sort"
	"time"
)

// legacyTimeFormat is the yearless "MM/DD HH:MM" stamp older history
// files carry. Entries are assumed to be from the most recent occurrence
// of that month and day that is not in the future.
const legacyTimeFormat = "01/02 15:04"

// SortedIDs returns conversation IDs ordered newest first by creation
// time. RFC 3339 timestamps parse directly; legacy stamps get a year
// assigned; unparseable entries sort last. Ties break on ID so the
// order is deterministic.
func (s *Store) SortedIDs() []string {
	s.mu.Lock()
	type entry struct {
		id string
		t  time.Time
		ok bool
	}
	entries := make([]entry, 0, len(s.conversations))
	now := time.Now()
	for id, conv := range s.conversations {
		t, ok := parseCreatedAt(conv.CreatedAt, now)
		entries = append(entries, entry{id: id, t: t, ok: ok})
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.t.Equal(b.t) {
			return a.t.After(b.t)
		}
		return a.id < b.id
	})

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// parseCreatedAt interprets a stored creation stamp. RFC 3339 is tried
// first, then the legacy yearless format.
func parseCreatedAt(stamp string, now time.Time) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		return t, true
	}
	t, err := time.Parse(legacyTimeFormat, stamp)
	if err != nil {
		return time.Time{}, false
	}
	// Pick the latest year that keeps the stamp in the past. A "12/31"
	// entry read on January 1st belongs to last year.
	t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if t.After(now) {
		t = t.AddDate(-1, 0, 0)
	}
	return t, true
}
