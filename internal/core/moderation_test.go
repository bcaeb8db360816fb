package core

import (
	"testing"

	"github.com/benbjohnson/clock"
)

func TestLedgerAppendKeepsEveryReport(t *testing.T) {
	l := NewLedger(clock.NewMock(), 3)

	_, count := l.Append("r1", "subject", "Spam")
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Repeated reports from the same reporter are not deduplicated.
	_, count = l.Append("r1", "subject", "Spam")
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if l.Count("subject") != 2 {
		t.Fatalf("expected total 2, got %d", l.Count("subject"))
	}
}

func TestLedgerEvaluateBanFiresExactlyOnce(t *testing.T) {
	l := NewLedger(clock.NewMock(), 3)

	l.Append("r1", "subject", "Spam")
	if l.EvaluateBan("subject") {
		t.Fatal("ban should not fire below threshold")
	}
	l.Append("r2", "subject", "Harcèlement")
	if l.EvaluateBan("subject") {
		t.Fatal("ban should not fire below threshold")
	}
	l.Append("r3", "subject", "Autre")
	if !l.EvaluateBan("subject") {
		t.Fatal("ban should fire at threshold")
	}

	// A fourth report never re-fires the side effect.
	l.Append("r4", "subject", "Spam")
	if l.EvaluateBan("subject") {
		t.Fatal("ban side effect must be exactly-once")
	}
	if !l.Banned("subject") {
		t.Fatal("subject should be marked banned")
	}
}

func TestLedgerCountsAreGlobalPerSubject(t *testing.T) {
	l := NewLedger(clock.NewMock(), 3)

	l.Append("r1", "a", "Spam")
	l.Append("r2", "b", "Spam")
	l.Append("r3", "a", "Autre")

	if l.Count("a") != 2 {
		t.Fatalf("expected 2 reports for a, got %d", l.Count("a"))
	}
	if l.Count("b") != 1 {
		t.Fatalf("expected 1 report for b, got %d", l.Count("b"))
	}
	if l.Count("c") != 0 {
		t.Fatalf("expected 0 reports for c, got %d", l.Count("c"))
	}
}
