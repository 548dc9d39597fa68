// Package dispatch classifies every failed request exactly once, resolves
// what the user sees, and decides whether the session must be torn down.
// Individual screens never show their own generic error UI; their only
// customization surface is the per-request override table.
package dispatch

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/simp-lee/consolekit/internal/domain"
)

// Notifier is the notification channel: fire-and-forget, called at most
// once per failure.
type Notifier interface {
	Show(spec domain.NotificationSpec)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(domain.NotificationSpec)

// Show implements Notifier.
func (f NotifierFunc) Show(spec domain.NotificationSpec) { f(spec) }

// SessionInvalidator tears the session down: clear session state, clear the
// remote cache, both synchronously. It reports whether this call actually
// performed the teardown, so concurrent SESSION_EXPIRED failures invalidate
// and redirect once.
type SessionInvalidator interface {
	InvalidateSession() bool
}

// Dispatcher is the pipeline stage every failed request passes through.
type Dispatcher struct {
	registry      Registry
	notifier      Notifier
	session       SessionInvalidator
	redirect      func()
	redirectDelay time.Duration
	after         func(time.Duration, func()) *time.Timer
	logger        *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRegistry replaces the default notification registry.
func WithRegistry(r Registry) Option {
	return func(d *Dispatcher) { d.registry = r }
}

// WithRedirectDelay sets how long the session-expired notification stays
// visible before the login redirect fires.
func WithRedirectDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.redirectDelay = delay }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// withAfter replaces timer creation, for tests.
func withAfter(after func(time.Duration, func()) *time.Timer) Option {
	return func(d *Dispatcher) { d.after = after }
}

// New creates a Dispatcher. notifier and session are required; redirect is
// invoked, once, after the redirect delay when the session is invalidated.
func New(notifier Notifier, session SessionInvalidator, redirect func(), opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:      DefaultRegistry(),
		notifier:      notifier,
		session:       session,
		redirect:      redirect,
		redirectDelay: 1500 * time.Millisecond,
		after:         time.AfterFunc,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Dispatch handles one failed request: classify, resolve the notification,
// apply the call site's override for that classification, show exactly one
// notification, and invalidate the session for the two tags that demand it.
// err must be non-nil.
func (d *Dispatcher) Dispatch(err error, overrides domain.Overrides) {
	tag := domain.ClassifyTag(err)
	spec := d.registry.Resolve(tag)

	if msg := aggregateDetails(err); msg != "" {
		spec.Message = msg
	}

	if o, ok := overrides[tag]; ok {
		merged, applied := applyOverride(spec, o)
		if !applied {
			// Malformed overrides are never a silent no-op: the default
			// notification still fires and the mistake is logged.
			d.logger.Warn("ignoring malformed notification override", slog.String("tag", string(tag)))
		}
		spec = merged
	}

	d.notifier.Show(spec)

	if tag.InvalidatesSession() {
		d.invalidate(tag)
	}
}

// invalidate clears the session and schedules the login redirect after a
// short delay so the notification stays visible before navigation fires.
// If another failure already tore the session down, this is a no-op.
func (d *Dispatcher) invalidate(tag domain.Tag) {
	if !d.session.InvalidateSession() {
		return
	}
	d.logger.Info("session invalidated", slog.String("tag", string(tag)))
	if d.redirect != nil {
		d.after(d.redirectDelay, d.redirect)
	}
}

// aggregateDetails folds a validation error's per-field messages into one
// notification message. Other errors keep their registry message.
func aggregateDetails(err error) string {
	tag := domain.ClassifyTag(err)
	if tag != domain.TagValidation {
		return ""
	}
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || len(appErr.Details) == 0 {
		return ""
	}

	fields := make([]string, 0, len(appErr.Details))
	for field := range appErr.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+appErr.Details[field])
	}
	return strings.Join(parts, "; ")
}
