package admission

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	internalrepo "AnalystDesk/internal/repository"
)

func TestUnlimitedProviderAlwaysAdmitted(t *testing.T) {
	ctrl := New(internalrepo.NewMemoryRateLimitStore(), nil)
	now := time.Now()

	for i := 0; i < 100; i++ {
		d, err := ctrl.Admit(context.Background(), "unlimited", now)
		if err != nil {
			t.Fatalf("admit error: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("call %d denied for unlimited provider: %s", i, d.Reason)
		}
	}
}

func TestPerMinuteLimitDeniesNextCall(t *testing.T) {
	ctrl := New(internalrepo.NewMemoryRateLimitStore(), map[string]Limit{
		"fast": {PerMinute: 3},
	})
	now := time.Now()

	for i := 0; i < 3; i++ {
		d, err := ctrl.Admit(context.Background(), "fast", now)
		if err != nil {
			t.Fatalf("admit error: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("call %d unexpectedly denied: %s", i, d.Reason)
		}
	}

	d, err := ctrl.Check(context.Background(), "fast", now)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if d.Allowed {
		t.Fatalf("expected 4th call within a minute to be denied")
	}
	if !strings.Contains(d.Reason, "per-minute") {
		t.Fatalf("unexpected reason: %s", d.Reason)
	}
}

func TestPerMinuteWindowSlides(t *testing.T) {
	ctrl := New(internalrepo.NewMemoryRateLimitStore(), map[string]Limit{
		"fast": {PerMinute: 1},
	})
	now := time.Now()

	if _, err := ctrl.Admit(context.Background(), "fast", now); err != nil {
		t.Fatalf("admit error: %v", err)
	}

	d, err := ctrl.Check(context.Background(), "fast", now.Add(61*time.Second))
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("call outside the minute window denied: %s", d.Reason)
	}
}

func TestPerDayLimit(t *testing.T) {
	ctrl := New(internalrepo.NewMemoryRateLimitStore(), map[string]Limit{
		"slow": {PerDay: 2},
	})
	now := time.Now()

	for i := 0; i < 2; i++ {
		if _, err := ctrl.Admit(context.Background(), "slow", now.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("admit error: %v", err)
		}
	}

	d, err := ctrl.Check(context.Background(), "slow", now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if d.Allowed {
		t.Fatalf("expected daily limit to deny")
	}
	if !strings.Contains(d.Reason, "daily") {
		t.Fatalf("unexpected reason: %s", d.Reason)
	}
}

func TestStaleTimestampsPrunedLazily(t *testing.T) {
	store := internalrepo.NewMemoryRateLimitStore()
	old := time.Now().Add(-25 * time.Hour)
	if err := store.Put(context.Background(), "slow", []time.Time{old, old.Add(time.Minute)}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	ctrl := New(store, map[string]Limit{"slow": {PerDay: 2}})

	d, err := ctrl.Check(context.Background(), "slow", time.Now())
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("stale timestamps should not count against the daily limit: %s", d.Reason)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	ctrl := New(internalrepo.NewMemoryRateLimitStore(), map[string]Limit{
		"fast": {PerMinute: 1},
	})
	now := time.Now()

	if _, err := ctrl.Admit(context.Background(), "fast", now); err != nil {
		t.Fatalf("admit error: %v", err)
	}

	// Without an intervening Record, repeated checks must agree.
	for i := 0; i < 5; i++ {
		d, err := ctrl.Check(context.Background(), "fast", now)
		if err != nil {
			t.Fatalf("check %d error: %v", i, err)
		}
		if d.Allowed {
			t.Fatalf("check %d flipped to allowed without a record", i)
		}
	}
}

func TestAdmitSerializesConcurrentRuns(t *testing.T) {
	ctrl := New(internalrepo.NewMemoryRateLimitStore(), map[string]Limit{
		"fast": {PerMinute: 1},
	})
	now := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := ctrl.Admit(context.Background(), "fast", now)
			if err != nil {
				t.Errorf("admit error: %v", err)
				return
			}
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 1 {
		t.Fatalf("expected exactly 1 admitted call, got %d", allowed)
	}
}
