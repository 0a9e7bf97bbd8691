package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/registration/internal/platform/metrics"
)

// sendTimeout bounds a single channel delivery. Dispatches outlive the
// originating HTTP request, so each send gets its own deadline.
const sendTimeout = 30 * time.Second

// Dispatcher fans a notification out to the enabled channels in the
// background. Registration never waits on, and never fails because of,
// notification delivery.
type Dispatcher struct {
	registry *Registry
	enabled  []string
	logger   zerolog.Logger

	wg sync.WaitGroup

	mu     sync.Mutex
	counts map[string]*ChannelStats
}

// ChannelStats tallies deliveries for one channel since process start.
type ChannelStats struct {
	Total        int     `json:"total"`
	Successful   int     `json:"successful"`
	Failed       int     `json:"failed"`
	DeliveryRate float64 `json:"deliveryRate"`
}

// NewDispatcher returns a Dispatcher that sends through the channels in
// enabled, resolved against the registry at dispatch time.
func NewDispatcher(registry *Registry, enabled []string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		enabled:  enabled,
		logger:   logger,
		counts:   make(map[string]*ChannelStats),
	}
}

// Dispatch delivers p on every enabled channel without blocking the
// caller. Failures are logged and counted, never returned.
func (d *Dispatcher) Dispatch(p Payload) {
	channels := d.registry.Select(d.enabled)
	if len(channels) == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for _, ch := range channels {
			d.send(ch, p)
		}
	}()
}

// send delivers p on a single channel. Channels are isolated from each
// other: a panic here is recovered and recorded as a failed delivery so
// the remaining channels still get their attempt.
func (d *Dispatcher) send(ch Channel, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			d.record(ch.Name(), false)
			d.logger.Error().
				Interface("panic", r).
				Str("channel", ch.Name()).
				Str("kind", string(p.Kind)).
				Msg("notification channel panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	receipt, err := ch.Send(ctx, p)
	if err != nil {
		d.record(ch.Name(), false)
		d.logger.Error().
			Err(err).
			Str("channel", ch.Name()).
			Str("kind", string(p.Kind)).
			Str("recipient", p.Recipient).
			Msg("notification delivery failed")
		return
	}

	d.record(ch.Name(), true)
	d.logger.Info().
		Str("channel", ch.Name()).
		Str("kind", string(p.Kind)).
		Str("recipient", p.Recipient).
		Str("message_id", receipt.MessageID).
		Msg("notification delivered")
}

func (d *Dispatcher) record(channel string, delivered bool) {
	status := metrics.StatusFailed
	if delivered {
		status = metrics.StatusSent
	}
	metrics.Notifications.WithLabelValues(channel, status).Inc()

	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.counts[channel]
	if s == nil {
		s = &ChannelStats{}
		d.counts[channel] = s
	}
	s.Total++
	if delivered {
		s.Successful++
	} else {
		s.Failed++
	}
	s.DeliveryRate = float64(s.Successful) / float64(s.Total)
}

// Stats returns a snapshot of per-channel delivery tallies.
func (d *Dispatcher) Stats() map[string]ChannelStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]ChannelStats, len(d.counts))
	for name, s := range d.counts {
		out[name] = *s
	}
	return out
}

// Wait blocks until all in-flight dispatches complete. Used during
// shutdown so pending notifications are not dropped mid-send.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
