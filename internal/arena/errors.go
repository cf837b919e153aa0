package arena

import "github.com/alligator-go/alligator/internal/obs"

// FailCause is the engine-internal error taxonomy. Every failure surfaces
// as a null result from Alloc (or silently from Dealloc); the last cause is
// retained for external inspection only under metrics builds (see
// LastFailure).
type FailCause int

const (
	noFailure FailCause = iota
	// NoZeroAlloc: the request was zero bytes.
	NoZeroAlloc
	// HostGrowFail: the host refused to grow the region to its cap.
	HostGrowFail
	// SizeClassTooSmall: the classifier produced an exponent below the
	// minimum; should be unreachable given clamping.
	SizeClassTooSmall
	// AddMiniPageNoSpace: the managed region is exhausted.
	AddMiniPageNoSpace
	// FreeMiniPagesContractBreach: a minipage on the free-minipages stack
	// had no free segments.
	FreeMiniPagesContractBreach
	// BigDeallocHeaderNotFound: dealloc of a big-alloc pointer found no
	// matching header — a double free or a bad pointer.
	BigDeallocHeaderNotFound
)

func (f FailCause) String() string {
	switch f {
	case NoZeroAlloc:
		return "no_zero_alloc"
	case HostGrowFail:
		return "host_grow_fail"
	case SizeClassTooSmall:
		return "size_class_too_small"
	case AddMiniPageNoSpace:
		return "add_minipage_no_space"
	case FreeMiniPagesContractBreach:
		return "free_minipages_contract_breach"
	case BigDeallocHeaderNotFound:
		return "big_dealloc_header_not_found"
	default:
		return "none"
	}
}

func (e *Engine) fail(cause FailCause) {
	if e.metricsEnabled {
		e.lastFail = cause
	}
	if e.logger != nil {
		e.logger.Warn("allocation failed", obs.String("cause", cause.String()))
	}
}

// LastFailure returns the most recent failure cause recorded by the
// engine. ok is false when the engine was constructed without
// WithMetrics, matching the "under metrics builds" scoping of the design
// this was distilled from.
func (e *Engine) LastFailure() (FailCause, bool) {
	if !e.metricsEnabled {
		return noFailure, false
	}
	return e.lastFail, e.lastFail != noFailure
}
