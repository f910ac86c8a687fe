package reconcile

import "fmt"

// Phase is a step of an apply run.
type Phase int

const (
	Idle Phase = iota
	ConfigLoaded
	TargetMerged
	Listed
	FloatingChecked
	ConfirmPending
	CleanedUp
	SkippedCleanup
	Installed
	Verified
	Done
	Aborted
	Failed
)

var phaseNames = [...]string{
	Idle:            "idle",
	ConfigLoaded:    "config-loaded",
	TargetMerged:    "target-merged",
	Listed:          "listed",
	FloatingChecked: "floating-checked",
	ConfirmPending:  "confirm-pending",
	CleanedUp:       "cleaned-up",
	SkippedCleanup:  "skipped-cleanup",
	Installed:       "installed",
	Verified:        "verified",
	Done:            "done",
	Aborted:         "aborted",
	Failed:          "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// IsTerminal reports whether the phase ends a run.
func IsTerminal(p Phase) bool {
	switch p {
	case Done, Aborted, Failed:
		return true
	default:
		return false
	}
}

// isAllowedTransition encodes the apply pipeline. Verification and
// bookkeeping are advisory, so Installed and Verified cannot fail.
func isAllowedTransition(from, to Phase) bool {
	switch from {
	case Idle:
		return to == ConfigLoaded || to == Failed
	case ConfigLoaded:
		return to == TargetMerged || to == Failed
	case TargetMerged:
		return to == Listed || to == Failed
	case Listed:
		return to == FloatingChecked || to == Failed
	case FloatingChecked:
		return to == ConfirmPending || to == SkippedCleanup
	case ConfirmPending:
		return to == CleanedUp || to == Aborted || to == Failed
	case CleanedUp, SkippedCleanup:
		return to == Installed || to == Failed
	case Installed:
		return to == Verified
	case Verified:
		return to == Done
	default:
		return false
	}
}

// tracker records the phases a run passes through.
type tracker struct {
	current Phase
	trail   []Phase
}

func newTracker() *tracker {
	return &tracker{current: Idle, trail: []Phase{Idle}}
}

func (t *tracker) to(next Phase) error {
	if !isAllowedTransition(t.current, next) {
		return fmt.Errorf("disallowed transition: %s -> %s", t.current, next)
	}
	t.current = next
	t.trail = append(t.trail, next)
	return nil
}
