package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recordingChannel struct {
	name string

	mu    sync.Mutex
	sent  []Payload
	err   error
	panic bool
}

func (r *recordingChannel) Name() string { return r.name }

func (r *recordingChannel) Send(_ context.Context, p Payload) (DeliveryReceipt, error) {
	if r.panic {
		panic("channel blew up")
	}
	r.mu.Lock()
	r.sent = append(r.sent, p)
	r.mu.Unlock()
	if r.err != nil {
		return DeliveryReceipt{}, r.err
	}
	return DeliveryReceipt{Channel: r.name, MessageID: "msg-1"}, nil
}

func (r *recordingChannel) Sent() []Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Payload, len(r.sent))
	copy(out, r.sent)
	return out
}

func TestDispatcher_DeliversToEnabledChannels(t *testing.T) {
	email := &recordingChannel{name: "email"}
	sms := &recordingChannel{name: "sms"}

	registry := NewRegistry()
	registry.Register(email)
	registry.Register(sms)

	d := NewDispatcher(registry, []string{"email"}, zerolog.Nop())
	d.Dispatch(Payload{
		Kind:      KindRegistrationConfirmation,
		Recipient: "john@example.com",
	})
	d.Wait()

	if got := len(email.Sent()); got != 1 {
		t.Errorf("expected 1 delivery on email, got %d", got)
	}
	if got := len(sms.Sent()); got != 0 {
		t.Errorf("expected 0 deliveries on sms, got %d", got)
	}
}

func TestDispatcher_FailureDoesNotPropagate(t *testing.T) {
	email := &recordingChannel{name: "email", err: errors.New("smtp down")}

	registry := NewRegistry()
	registry.Register(email)

	d := NewDispatcher(registry, []string{"email"}, zerolog.Nop())

	// Dispatch must not return an error or panic even when every
	// channel fails.
	d.Dispatch(Payload{Kind: KindRegistrationConfirmation, Recipient: "x@example.com"})
	d.Wait()

	if got := len(email.Sent()); got != 1 {
		t.Errorf("expected the failing channel to be attempted once, got %d", got)
	}
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	email := &recordingChannel{name: "email", panic: true}

	registry := NewRegistry()
	registry.Register(email)

	d := NewDispatcher(registry, []string{"email"}, zerolog.Nop())
	d.Dispatch(Payload{Kind: KindRegistrationConfirmation})
	d.Wait()
	// Reaching here without the test binary crashing is the assertion.
}

func TestDispatcher_PanicDoesNotBlockOtherChannels(t *testing.T) {
	email := &recordingChannel{name: "email", panic: true}
	sms := &recordingChannel{name: "sms"}

	registry := NewRegistry()
	registry.Register(email)
	registry.Register(sms)

	// The panicking channel comes first in the enabled list; the channels
	// behind it must still get their attempt.
	d := NewDispatcher(registry, []string{"email", "sms"}, zerolog.Nop())
	d.Dispatch(Payload{Kind: KindRegistrationConfirmation, Recipient: "x@example.com"})
	d.Wait()

	if got := len(sms.Sent()); got != 1 {
		t.Errorf("expected 1 delivery on the channel after the panicking one, got %d", got)
	}

	stats := d.Stats()
	if stats["email"].Failed != 1 {
		t.Errorf("expected the panicking channel to be counted as failed, got %+v", stats["email"])
	}
	if stats["sms"].Successful != 1 {
		t.Errorf("expected 1 successful sms delivery, got %+v", stats["sms"])
	}
}

func TestDispatcher_Stats(t *testing.T) {
	good := &recordingChannel{name: "email"}

	registry := NewRegistry()
	registry.Register(good)

	d := NewDispatcher(registry, []string{"email"}, zerolog.Nop())
	for i := 0; i < 3; i++ {
		d.Dispatch(Payload{Kind: KindRegistrationConfirmation})
	}
	d.Wait()
	good.err = errors.New("smtp down")
	d.Dispatch(Payload{Kind: KindRegistrationConfirmation})
	d.Wait()

	s := d.Stats()["email"]
	if s.Total != 4 || s.Successful != 3 || s.Failed != 1 {
		t.Errorf("unexpected tallies: %+v", s)
	}
	if s.DeliveryRate != 0.75 {
		t.Errorf("expected delivery rate 0.75, got %f", s.DeliveryRate)
	}
}

func TestDispatcher_NoEnabledChannels(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&recordingChannel{name: "email"})

	d := NewDispatcher(registry, nil, zerolog.Nop())
	d.Dispatch(Payload{Kind: KindRegistrationConfirmation})
	d.Wait()
}

func TestDispatcher_MultipleDispatches(t *testing.T) {
	email := &recordingChannel{name: "email"}

	registry := NewRegistry()
	registry.Register(email)

	d := NewDispatcher(registry, []string{"email"}, zerolog.Nop())
	for i := 0; i < 10; i++ {
		d.Dispatch(Payload{Kind: KindRegistrationConfirmation})
	}
	d.Wait()

	if got := len(email.Sent()); got != 10 {
		t.Errorf("expected 10 deliveries, got %d", got)
	}
}
