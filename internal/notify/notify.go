// Package notify delivers registration notifications through pluggable
// channels. Email is the only channel shipped today; the registry keeps
// the door open for SMS, push and others without touching the dispatch
// path.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Kind identifies what a notification is about. It doubles as the
// template id the channel renders.
type Kind string

const (
	KindRegistrationConfirmation Kind = "registration-confirmation"
	KindErrorNotification        Kind = "error-notification"
	KindTestNotification         Kind = "test-notification"
)

// ErrChannelRegistered is returned when a channel name is registered twice.
var ErrChannelRegistered = errors.New("channel already registered")

// Payload is the channel-agnostic content of a notification.
type Payload struct {
	Kind      Kind
	Recipient string
	Data      map[string]string
}

// DeliveryReceipt is returned by a channel after a successful send.
type DeliveryReceipt struct {
	Channel   string `json:"channel"`
	MessageID string `json:"message_id"`
}

// Channel is a single delivery mechanism (email, sms, ...).
type Channel interface {
	Name() string
	Send(ctx context.Context, p Payload) (DeliveryReceipt, error)
}

// ChannelInfo describes a channel for the channels listing endpoint.
type ChannelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// Registry holds the available channels keyed by name.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Channel)}
}

// Register adds a channel. Registering the same name twice is a
// programming error and is reported rather than silently overwritten.
func (r *Registry) Register(ch Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[ch.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrChannelRegistered, ch.Name())
	}
	r.channels[ch.Name()] = ch
	return nil
}

// Get retrieves a channel by name.
func (r *Registry) Get(name string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// Select returns the registered channels matching the given names.
// Unknown names are skipped.
func (r *Registry) Select(names []string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Channel
	for _, name := range names {
		if ch, ok := r.channels[name]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// Describe reports every registered channel, marking the ones whose
// names appear in enabled.
func (r *Registry) Describe(enabled []string) []ChannelInfo {
	enabledSet := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		enabledSet[name] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ChannelInfo, 0, len(r.channels))
	for name := range r.channels {
		out = append(out, ChannelInfo{
			ID:          name,
			Name:        channelDisplayName(name),
			Enabled:     enabledSet[name],
			Description: channelDescription(name),
		})
	}
	return out
}

func channelDisplayName(id string) string {
	switch id {
	case "email":
		return "Email"
	default:
		return id
	}
}

func channelDescription(id string) string {
	switch id {
	case "email":
		return "Send notifications via email"
	default:
		return ""
	}
}
