package dispatch

import (
	"time"

	"github.com/simp-lee/consolekit/internal/domain"
)

// Registry maps every classification tag to the notification the user sees
// by default. Call sites may override per request; the registry itself is
// fixed at construction.
type Registry map[domain.Tag]domain.NotificationSpec

const (
	dismissShort = 4 * time.Second
	dismissLong  = 8 * time.Second
)

// DefaultRegistry covers the full closed taxonomy. Every recognized tag has
// an entry; an unrecognized tag falls back to the UNKNOWN_SERVER_ERROR
// entry, never to silence.
func DefaultRegistry() Registry {
	return Registry{
		domain.TagBadRequest: {
			Title: "Request rejected", Message: "The server could not process this request.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagNotFound: {
			Title: "Not found", Message: "The requested record no longer exists.",
			Severity: domain.SeverityWarning, AutoDismiss: dismissShort,
		},
		domain.TagUnauthorized: {
			Title: "Not signed in", Message: "You need to sign in to perform this action.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagForbidden: {
			Title: "No permission", Message: "Your account is not allowed to perform this action.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagDuplicate: {
			Title: "Already exists", Message: "A record with these details already exists.",
			Severity: domain.SeverityWarning, AutoDismiss: dismissLong,
		},
		domain.TagDatabase: {
			Title: "Server error", Message: "The server failed to store the change. Try again.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagResourceConflict: {
			Title: "Conflict", Message: "The record changed while you were editing it. Reload and retry.",
			Severity: domain.SeverityWarning, AutoDismiss: dismissLong,
		},
		domain.TagValidation: {
			Title: "Check your input", Message: "Some fields are invalid.",
			Severity: domain.SeverityWarning, AutoDismiss: dismissLong,
		},
		domain.TagInternalServer: {
			Title: "Server error", Message: "Something went wrong on the server.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagServiceUnavailable: {
			Title: "Service unavailable", Message: "The service is temporarily unavailable. Try again shortly.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagSessionExpired: {
			Title: "Session expired", Message: "Your session has expired. Please sign in again.",
			Severity: domain.SeverityWarning, AutoDismiss: dismissLong,
		},
		domain.TagSecurityAlert: {
			Title: "Security alert", Message: "Your session was terminated for security reasons.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagScopeRequired: {
			Title: "No location assigned", Message: "Your account has no assigned location for this screen.",
			Severity: domain.SeverityWarning, AutoDismiss: dismissLong,
		},
		domain.TagTransport: {
			Title: "Connection problem", Message: "Could not reach the server. Check your connection.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
		domain.TagUnknownServer: {
			Title: "Unexpected error", Message: "The server returned an unexpected error.",
			Severity: domain.SeverityError, AutoDismiss: dismissLong,
		},
	}
}

// Resolve returns the default spec for tag, falling back to the generic
// unknown-server entry for tags without a registry entry.
func (r Registry) Resolve(tag domain.Tag) domain.NotificationSpec {
	if spec, ok := r[tag]; ok {
		return spec
	}
	return r[domain.TagUnknownServer]
}

// applyOverride merges a per-request override over the resolved spec. This
// is the single merge point for both override forms; anything else (nil, an
// unknown concrete type) is reported by the caller and the defaults win.
func applyOverride(base domain.NotificationSpec, o domain.Override) (domain.NotificationSpec, bool) {
	switch ov := o.(type) {
	case domain.ReplaceMessage:
		base.Message = string(ov)
		return base, true
	case domain.PatchSpec:
		if ov.Title != nil {
			base.Title = *ov.Title
		}
		if ov.Message != nil {
			base.Message = *ov.Message
		}
		if ov.Severity != nil {
			base.Severity = *ov.Severity
		}
		if ov.AutoDismiss != nil {
			base.AutoDismiss = *ov.AutoDismiss
		}
		return base, true
	default:
		return base, false
	}
}
