package ingest

import "strings"

// canonicalName is the dedup key: trimmed, case-folded. Exact equality only;
// near-duplicates ("The Liberty Science Center" vs "Liberty Science Center")
// are a known gap and deliberately not caught.
func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Gate prevents duplicate place records across repeated extractions and
// imports. The persistence layer enforces no uniqueness constraint, so the
// gate is the sole line of defense and must be consulted synchronously
// before every insert — including against names inserted earlier in the
// same batch.
type Gate struct {
	seen map[string]struct{}
}

// NewGate starts a gate primed with the existing active place names.
func NewGate(existingNames []string) *Gate {
	g := &Gate{seen: make(map[string]struct{}, len(existingNames))}
	for _, n := range existingNames {
		key := canonicalName(n)
		if key != "" {
			g.seen[key] = struct{}{}
		}
	}
	return g
}

// Admit reports whether name may be inserted, and records it when admitted
// so a second occurrence within the same batch is refused.
func (g *Gate) Admit(name string) bool {
	key := canonicalName(name)
	if key == "" {
		return false
	}
	if _, dup := g.seen[key]; dup {
		return false
	}
	g.seen[key] = struct{}{}
	return true
}
