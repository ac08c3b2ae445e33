package plan

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/weekender-app/weekender/internal/apperr"
)

// AddPlace appends a stop to the itinerary. Duplicates are allowed: a place
// can legitimately appear twice (a return visit).
func AddPlace(p *WeekendPlan, placeID int64, note string) {
	p.Entries = append(p.Entries, Entry{PlaceID: placeID, Note: note})
}

// RemovePlace drops the first occurrence of placeID only. Returns false when
// the plan does not reference it.
func RemovePlace(p *WeekendPlan, placeID int64) bool {
	for i, e := range p.Entries {
		if e.PlaceID == placeID {
			p.Entries = append(p.Entries[:i], p.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Reorder replaces the itinerary order wholesale. newOrder must be a
// permutation of the current place-id multiset; anything else fails with
// invalid_order and leaves the plan untouched. Notes follow their place ids:
// the first pending note for an id attaches to its first reordered slot.
func Reorder(p *WeekendPlan, newOrder []int64) error {
	if len(newOrder) != len(p.Entries) {
		return apperr.InvalidOrder("new order must contain every existing place exactly once")
	}

	remaining := map[int64][]Entry{}
	for _, e := range p.Entries {
		remaining[e.PlaceID] = append(remaining[e.PlaceID], e)
	}

	reordered := make([]Entry, 0, len(newOrder))
	for _, id := range newOrder {
		pending := remaining[id]
		if len(pending) == 0 {
			return apperr.InvalidOrder("new order is not a permutation of the current itinerary")
		}
		reordered = append(reordered, pending[0])
		remaining[id] = pending[1:]
	}

	p.Entries = reordered
	return nil
}

const shareCodeBytes = 16

// EnsureShareCode returns the plan's share code, generating one on first
// call. The code is a bearer credential for public read access, so it gets
// full crypto/rand entropy and never rotates once issued.
func EnsureShareCode(p *WeekendPlan) (code string, generated bool, err error) {
	if p.ShareCode != "" {
		return p.ShareCode, false, nil
	}
	buf := make([]byte, shareCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", false, apperr.Internal("generate share code: " + err.Error())
	}
	p.ShareCode = hex.EncodeToString(buf)
	return p.ShareCode, true, nil
}
