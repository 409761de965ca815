package idgen

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPatientID_Format(t *testing.T) {
	g := NewWithClock(fixedClock(time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)))

	id := g.PatientID()
	if id != "P202503140001" {
		t.Errorf("expected P202503140001, got %s", id)
	}

	id = g.PatientID()
	if id != "P202503140002" {
		t.Errorf("expected P202503140002, got %s", id)
	}
}

func TestVisitID_Format(t *testing.T) {
	g := NewWithClock(fixedClock(time.Date(2025, 3, 14, 10, 30, 45, 0, time.UTC)))

	id := g.VisitID()
	if id != "V20250314103045001" {
		t.Errorf("expected V20250314103045001, got %s", id)
	}
}

func TestAdmissionID_Format(t *testing.T) {
	g := NewWithClock(fixedClock(time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)))

	id := g.AdmissionID()
	if id != "IPD202503140001" {
		t.Errorf("expected IPD202503140001, got %s", id)
	}
}

func TestNextID_GenericPrefixes(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 45, 0, time.UTC)
	g := NewWithClock(fixedClock(now))

	pattern := regexp.MustCompile(`^PAY20250314103045\d{3}$`)
	id := g.NextID("PAY")
	if !pattern.MatchString(id) {
		t.Errorf("unexpected PAY id: %s", id)
	}

	// Different prefixes use independent buckets.
	if got := g.NextID("LOG"); got != "LOG20250314103045001" {
		t.Errorf("expected LOG sequence to start at 1, got %s", got)
	}
	if got := g.NextID("PAY"); got != "PAY20250314103045002" {
		t.Errorf("expected PAY sequence to continue at 2, got %s", got)
	}
}

func TestBucketRollover_ResetsSequence(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	g := NewWithClock(func() time.Time { return now })

	g.PatientID()
	g.PatientID()

	now = now.Add(24 * time.Hour)
	if got := g.PatientID(); got != "P202503150001" {
		t.Errorf("expected sequence reset on new day, got %s", got)
	}
}

func TestConcurrentIssuance_ContiguousSequences(t *testing.T) {
	const n = 200
	g := NewWithClock(fixedClock(time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)))

	ids := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ids[i] = g.AdmissionID()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	seqs := make([]int, 0, n)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id issued: %s", id)
		}
		seen[id] = true

		seq, err := strconv.Atoi(id[len("IPD20250314"):])
		if err != nil {
			t.Fatalf("bad id %s: %v", id, err)
		}
		seqs = append(seqs, seq)
	}

	sort.Ints(seqs)
	for i, seq := range seqs {
		if seq != i+1 {
			t.Fatalf("sequence not contiguous at position %d: %v", i, seqs[:i+1])
		}
	}
}

func TestNextID_ZeroPadding(t *testing.T) {
	g := NewWithClock(fixedClock(time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)))

	for i := 1; i <= 12; i++ {
		id := g.NextID("C")
		want := fmt.Sprintf("C20250314100000%03d", i)
		if id != want {
			t.Fatalf("expected %s, got %s", want, id)
		}
	}
}
