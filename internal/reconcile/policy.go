package reconcile

import "fmt"

// CachePolicy is the cycle counter that chooses between cached and
// authoritative registry fetches. The index stays within [1, period].
//
// Every period-th cycle is authoritative. A cached cycle that finds any
// mismatch is provisional: the caller must discard its result, call
// Escalate, and rerun immediately so the next fetch is authoritative.
//
// CachePolicy is owned by the loop driver and is not safe for concurrent use.
type CachePolicy struct {
	period int
	index  int
}

// NewCachePolicy returns a policy with the given refresh period. A period
// of 1 makes every fetch authoritative.
func NewCachePolicy(period int) (*CachePolicy, error) {
	if period < 1 {
		return nil, fmt.Errorf("cache refresh period must be at least 1, got %d", period)
	}
	return &CachePolicy{period: period, index: 1}, nil
}

// Next advances the counter and reports whether this cycle may use a
// cached fetch.
func (p *CachePolicy) Next() (cached bool) {
	if p.index >= p.period {
		p.index = 1
		return false
	}
	p.index++
	return true
}

// Escalate forces the next cycle to be authoritative.
func (p *CachePolicy) Escalate() {
	p.index = p.period
}

// Index returns the current counter value.
func (p *CachePolicy) Index() int {
	return p.index
}

// Period returns the configured refresh period.
func (p *CachePolicy) Period() int {
	return p.period
}
