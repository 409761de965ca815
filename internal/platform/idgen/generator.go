// Package idgen issues the human-readable, date-embedded identifiers used
// across the system: patient, visit, and admission numbers plus generic
// prefixed ids for charges, payments, and log entries.
package idgen

import (
	"fmt"
	"sync"
	"time"
)

// IDSource is the issuing capability injected into services. Sequence numbers
// within a bucket are contiguous starting at 1 and never repeat.
type IDSource interface {
	// PatientID returns P + YYYYMMDD + 4-digit daily sequence.
	PatientID() string
	// VisitID returns V + YYYYMMDDHHMMSS + 3-digit sequence.
	VisitID() string
	// AdmissionID returns IPD + YYYYMMDD + 4-digit daily sequence.
	AdmissionID() string
	// NextID returns prefix + YYYYMMDDHHMMSS + 3-digit sequence for
	// generic entities (C, PAY, LOG, OT, U, ...).
	NextID(prefix string) string
}

// Generator issues identifiers from process-local counters. A single mutex
// guards the counter map: issuance is cheap and contention is dominated by
// the database work around it, so per-bucket locking is not worth its
// complexity.
type Generator struct {
	mu       sync.Mutex
	counters map[string]int
	now      func() time.Time
}

// New returns a Generator using the system clock.
func New() *Generator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Generator with an injected clock. Tests pin the
// clock to exercise bucket rollover deterministically.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{
		counters: make(map[string]int),
		now:      now,
	}
}

func (g *Generator) next(bucket string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[bucket]++
	return g.counters[bucket]
}

func (g *Generator) PatientID() string {
	day := g.now().Format("20060102")
	seq := g.next("patient_" + day)
	return fmt.Sprintf("P%s%04d", day, seq)
}

func (g *Generator) VisitID() string {
	ts := g.now().Format("20060102150405")
	seq := g.next("visit_" + ts)
	return fmt.Sprintf("V%s%03d", ts, seq)
}

func (g *Generator) AdmissionID() string {
	day := g.now().Format("20060102")
	seq := g.next("ipd_" + day)
	return fmt.Sprintf("IPD%s%04d", day, seq)
}

func (g *Generator) NextID(prefix string) string {
	ts := g.now().Format("20060102150405")
	seq := g.next(prefix + "_" + ts)
	return fmt.Sprintf("%s%s%03d", prefix, ts, seq)
}
