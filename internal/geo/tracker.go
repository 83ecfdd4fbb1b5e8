// Package geo wraps the device location capability behind a cancellable
// subscription model.
package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"karsdrive/internal/domain"
)

// ErrPermissionDenied is returned when the user refuses location
// access.
var ErrPermissionDenied = errors.New("location permission denied")

// Provider is the device location capability surface.
type Provider interface {
	// Current returns a one-shot position fix.
	Current(ctx context.Context) (domain.LocationSample, error)

	// Watch streams position samples at the given minimum interval
	// until the returned cancel function is called. There is no
	// minimum distance filter.
	Watch(ctx context.Context, interval time.Duration, fn func(domain.LocationSample)) (cancel func(), err error)
}

// Subscription is a handle to one live position stream.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel stops the stream. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Tracker owns at most one active position subscription and applies
// heading smoothing on top of the raw provider stream.
type Tracker struct {
	provider Provider
	interval time.Duration

	mu      sync.Mutex
	active  *Subscription
	heading *headingFilter
}

// NewTracker creates a Tracker over the given provider.
func NewTracker(provider Provider, interval time.Duration, headingDelta float64, headingDebounce time.Duration) *Tracker {
	return &Tracker{
		provider: provider,
		interval: interval,
		heading:  newHeadingFilter(headingDelta, headingDebounce),
	}
}

// Current returns a one-shot position fix.
func (t *Tracker) Current(ctx context.Context) (domain.LocationSample, error) {
	return t.provider.Current(ctx)
}

// Watch starts a position stream. onSample receives every raw sample;
// onHeading receives only headings that pass the smoothing filter.
// Starting a new watch cancels the previous one first, so camera
// updates are never driven by two streams at once.
func (t *Tracker) Watch(ctx context.Context, onSample func(domain.LocationSample), onHeading func(float64)) (*Subscription, error) {
	t.mu.Lock()
	if t.active != nil {
		t.active.Cancel()
		t.active = nil
	}
	t.mu.Unlock()

	cancel, err := t.provider.Watch(ctx, t.interval, func(sample domain.LocationSample) {
		onSample(sample)
		if heading, ok := t.heading.accept(sample.Heading, sample.Timestamp); ok && onHeading != nil {
			onHeading(heading)
		}
	})
	if err != nil {
		return nil, err
	}

	sub := &Subscription{cancel: cancel}

	t.mu.Lock()
	t.active = sub
	t.mu.Unlock()

	return sub, nil
}

// Stop cancels the active subscription, if any.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		t.active.Cancel()
		t.active = nil
	}
}
