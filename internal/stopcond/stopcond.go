// Package stopcond provides the predicates the sync loop polls once per
// completed cycle to decide whether to exit.
package stopcond

import (
	"fmt"
	"strings"
)

// Condition reports whether the loop should stop. It is polled once per
// completed cycle and should not have side effects beyond bookkeeping.
type Condition interface {
	ShouldStop() bool
}

// Func adapts a function to a Condition.
type Func func() bool

// ShouldStop calls f.
func (f Func) ShouldStop() bool { return f() }

// Never is a Condition that never fires.
var Never Condition = Func(func() bool { return false })

// anyOf stops when any member stops.
type anyOf []Condition

// Any combines conditions with logical OR. Members are polled in order and
// polling stops at the first that fires. With no members it never fires.
func Any(conds ...Condition) Condition {
	var flat anyOf
	for _, c := range conds {
		if c == nil {
			continue
		}
		if nested, ok := c.(anyOf); ok {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, c)
	}
	return flat
}

func (a anyOf) ShouldStop() bool {
	for _, c := range a {
		if c.ShouldStop() {
			return true
		}
	}
	return false
}

func (a anyOf) String() string {
	parts := make([]string, len(a))
	for i, c := range a {
		parts[i] = describe(c)
	}
	return "any(" + strings.Join(parts, ", ") + ")"
}

// cycleBudget stops after a fixed number of polls.
type cycleBudget struct {
	limit int
	seen  int
}

// AfterCycles fires on the n-th poll, i.e. after n completed cycles.
// n <= 0 never fires.
func AfterCycles(n int) Condition {
	return &cycleBudget{limit: n}
}

func (c *cycleBudget) ShouldStop() bool {
	if c.limit <= 0 {
		return false
	}
	c.seen++
	return c.seen >= c.limit
}

func (c *cycleBudget) String() string {
	return fmt.Sprintf("after %d cycle(s)", c.limit)
}

// describe returns a human-readable name for logging.
func describe(c Condition) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}

// Describe returns a human-readable summary of c for logging.
func Describe(c Condition) string {
	if c == nil {
		return "none"
	}
	return describe(c)
}
