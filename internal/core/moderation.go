package core

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/salonlabs/salon-server/internal/utils"
)

// Report is an immutable record of one participant reporting another.
type Report struct {
	ID         string
	ReporterID string
	SubjectID  string
	Reason     string
	CreatedAt  time.Time
}

// Ledger accumulates reports per subject and decides when the automatic
// ban fires. Records are append-only; they survive the ban as an audit
// trail. Owned by the hub goroutine.
type Ledger struct {
	reports   map[string][]Report
	banned    map[string]struct{}
	threshold int
	clk       clock.Clock
}

// NewLedger builds a ledger that bans subjects at the given report count.
func NewLedger(clk clock.Clock, threshold int) *Ledger {
	return &Ledger{
		reports:   make(map[string][]Report),
		banned:    make(map[string]struct{}),
		threshold: threshold,
		clk:       clk,
	}
}

// Append records a report and returns it with the subject's updated total.
// Repeated reports from the same reporter are kept; repetition is signal.
func (l *Ledger) Append(reporterID, subjectID, reason string) (Report, int) {
	report := Report{
		ID:         utils.NewID(),
		ReporterID: reporterID,
		SubjectID:  subjectID,
		Reason:     reason,
		CreatedAt:  l.clk.Now(),
	}
	l.reports[subjectID] = append(l.reports[subjectID], report)
	return report, len(l.reports[subjectID])
}

// Count returns the subject's total report count across all rooms.
func (l *Ledger) Count(subjectID string) int {
	return len(l.reports[subjectID])
}

// EvaluateBan decides whether the subject's ban should fire now. It returns
// true exactly once per subject: the first time the count reaches the
// threshold. Later reports never re-fire the ban side effect.
func (l *Ledger) EvaluateBan(subjectID string) bool {
	if len(l.reports[subjectID]) < l.threshold {
		return false
	}
	if _, done := l.banned[subjectID]; done {
		return false
	}
	l.banned[subjectID] = struct{}{}
	return true
}

// Banned reports whether the subject's global ban has already fired.
func (l *Ledger) Banned(subjectID string) bool {
	_, ok := l.banned[subjectID]
	return ok
}
