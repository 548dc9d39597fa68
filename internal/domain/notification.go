package domain

import "time"

// Severity orders notification kinds from informational to fatal.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase name used on notification payloads.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// NotificationSpec is what the user sees for one classified failure.
type NotificationSpec struct {
	Title       string
	Message     string
	Severity    Severity
	AutoDismiss time.Duration
}

// Override is the only per-call customization surface of the dispatcher:
// either a full replacement of the message string, or a field-level merge.
// The two concrete forms are ReplaceMessage and PatchSpec.
type Override interface {
	isOverride()
}

// ReplaceMessage swaps the resolved spec's message for the given string.
type ReplaceMessage string

// PatchSpec merges the set fields over the resolved spec; nil fields keep
// the registry value.
type PatchSpec struct {
	Title       *string
	Message     *string
	Severity    *Severity
	AutoDismiss *time.Duration
}

func (ReplaceMessage) isOverride() {}
func (PatchSpec) isOverride()      {}

// Overrides maps classification tags to their per-request override.
type Overrides map[Tag]Override
