// Package reconcile computes which lock actions a cycle needs and decides
// whether the cycle's registry fetch may be served from cache.
//
// Compute is pure: it performs no I/O and never mutates its inputs.
package reconcile

import "github.com/Iron-Ham/lfslocker/internal/snapshot"

// Input is the state one cycle reconciles.
type Input struct {
	// Status is S, the locally modified paths.
	Status snapshot.PathSet
	// Own is O, paths locked by the configured identity.
	Own snapshot.PathSet
	// Others is X, paths locked by anyone else.
	Others snapshot.PathSet
	// Warned is W, paths already warned about. Read only.
	Warned snapshot.PathSet
}

// Result holds the three independent action sets of a cycle.
type Result struct {
	// Blocking is (S ∩ X) \ W.
	Blocking snapshot.PathSet
	// Missing is S \ O \ X.
	Missing snapshot.PathSet
	// Unnecessary is O \ S.
	Unnecessary snapshot.PathSet
}

// Compute derives the blocking, missing and unnecessary sets.
func Compute(in Input) Result {
	return Result{
		Blocking:    in.Status.Intersect(in.Others).Difference(in.Warned),
		Missing:     in.Status.Difference(in.Own, in.Others),
		Unnecessary: in.Own.Difference(in.Status),
	}
}

// FromSnapshots builds the Input for identity from a status and registry
// snapshot and computes the result.
func FromSnapshots(status *snapshot.Status, registry *snapshot.Registry, identity string, warned snapshot.PathSet) Result {
	own, others := registry.Partition(identity)
	return Compute(Input{
		Status: status.Paths(),
		Own:    own,
		Others: others,
		Warned: warned,
	})
}

// Empty reports whether no set calls for action.
func (r Result) Empty() bool {
	return r.Blocking.Empty() && r.Missing.Empty() && r.Unnecessary.Empty()
}

// Counts returns the sizes of the blocking, missing and unnecessary sets.
func (r Result) Counts() (blocking, missing, unnecessary int) {
	return r.Blocking.Len(), r.Missing.Len(), r.Unnecessary.Len()
}
