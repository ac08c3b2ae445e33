package ingest

import "testing"

func TestGateRefusesExistingNames(t *testing.T) {
	g := NewGate([]string{"Great Falls Park", "  National Aquarium  "})
	if g.Admit("great falls park") {
		t.Fatalf("case-folded duplicate admitted")
	}
	if g.Admit("  NATIONAL AQUARIUM") {
		t.Fatalf("trimmed duplicate admitted")
	}
	if !g.Admit("Harpers Ferry") {
		t.Fatalf("new name refused")
	}
}

func TestGateRefusesWithinBatchDuplicates(t *testing.T) {
	g := NewGate(nil)
	if !g.Admit("Mystery Spot") {
		t.Fatalf("first occurrence refused")
	}
	if g.Admit("  mystery spot ") {
		t.Fatalf("second occurrence in the same batch admitted")
	}
}

func TestGateRefusesBlankNames(t *testing.T) {
	g := NewGate(nil)
	if g.Admit("   ") {
		t.Fatalf("blank name admitted")
	}
}

func TestGateIsExactMatchOnly(t *testing.T) {
	g := NewGate([]string{"Liberty Science Center"})
	if !g.Admit("The Liberty Science Center") {
		t.Fatalf("near-duplicates are out of scope; exact key only")
	}
}
