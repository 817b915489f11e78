package admission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AnalystDesk/internal/domain/repository"
)

const (
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// Limit defines rolling call budgets for one provider. A zero value on a
// window disables that window; a provider with no Limit entry at all is
// always admitted.
type Limit struct {
	PerMinute int
	PerDay    int
}

func (l Limit) unlimited() bool {
	return l.PerMinute <= 0 && l.PerDay <= 0
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Controller gates provider calls on per-minute and per-day sliding windows
// derived from a persisted ordered timestamp list. State lives behind the
// injected RateLimitStore; the controller itself only holds per-provider
// locks so concurrent runs serialize their check-and-record pairs.
type Controller struct {
	store  repository.RateLimitStore
	limits map[string]Limit

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Controller over the given store and limit table.
func New(store repository.RateLimitStore, limits map[string]Limit) *Controller {
	if limits == nil {
		limits = make(map[string]Limit)
	}
	return &Controller{
		store:  store,
		limits: limits,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (c *Controller) lockFor(providerID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[providerID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[providerID] = l
	}
	return l
}

// Check reports whether providerID may be called at now. It is a pure query:
// the persisted timestamp list is never mutated here, so repeated calls
// without an intervening Record return the same result.
func (c *Controller) Check(ctx context.Context, providerID string, now time.Time) (Decision, error) {
	lim, ok := c.limits[providerID]
	if !ok || lim.unlimited() {
		return Decision{Allowed: true}, nil
	}

	stamps, err := c.store.Get(ctx, providerID)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit read for %s: %w", providerID, err)
	}
	stamps = pruneOlderThan(stamps, now.Add(-dayWindow))

	if lim.PerDay > 0 && len(stamps) >= lim.PerDay {
		return Decision{Reason: fmt.Sprintf("daily limit reached (%d/%d)", len(stamps), lim.PerDay)}, nil
	}
	if lim.PerMinute > 0 {
		used := countSince(stamps, now.Add(-minuteWindow))
		if used >= lim.PerMinute {
			return Decision{Reason: fmt.Sprintf("per-minute limit reached (%d/%d)", used, lim.PerMinute)}, nil
		}
	}
	return Decision{Allowed: true}, nil
}

// Record appends a call timestamp for providerID, pruning entries older than
// the 24h window. Must be invoked exactly once per attempted call,
// immediately before dispatch. Providers without configured limits are not
// recorded; nothing would ever read their lists.
func (c *Controller) Record(ctx context.Context, providerID string, now time.Time) error {
	lim, ok := c.limits[providerID]
	if !ok || lim.unlimited() {
		return nil
	}

	stamps, err := c.store.Get(ctx, providerID)
	if err != nil {
		return fmt.Errorf("rate limit read for %s: %w", providerID, err)
	}
	stamps = pruneOlderThan(stamps, now.Add(-dayWindow))
	stamps = append(stamps, now)

	if err := c.store.Put(ctx, providerID, stamps); err != nil {
		return fmt.Errorf("rate limit write for %s: %w", providerID, err)
	}
	return nil
}

// Admit performs Check and, when allowed, Record as one serialized
// read-modify-write per provider. Without the lock two concurrent runs could
// both pass a stale count for a limit that only has one slot left.
func (c *Controller) Admit(ctx context.Context, providerID string, now time.Time) (Decision, error) {
	l := c.lockFor(providerID)
	l.Lock()
	defer l.Unlock()

	d, err := c.Check(ctx, providerID, now)
	if err != nil || !d.Allowed {
		return d, err
	}
	if err := c.Record(ctx, providerID, now); err != nil {
		return Decision{}, err
	}
	return d, nil
}

// pruneOlderThan drops timestamps at or before cutoff, preserving order.
// Eviction is lazy: there is no background timer.
func pruneOlderThan(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}

func countSince(stamps []time.Time, cutoff time.Time) int {
	n := 0
	for _, s := range stamps {
		if s.After(cutoff) {
			n++
		}
	}
	return n
}
