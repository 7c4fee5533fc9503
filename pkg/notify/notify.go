// Package notify fans domain events out to the live channels (MQTT, dashboard websocket).
package notify

import "time"

// Event types
const (
	EventLevelUp          = "level.up"
	EventGiveawayCreated  = "giveaway.created"
	EventGiveawayEntered  = "giveaway.entered"
	EventGiveawayEnded    = "giveaway.ended"
	EventGiveawayRerolled = "giveaway.rerolled"
	EventBoostStarted     = "boost.started"
	EventBoostEnded       = "boost.ended"
	EventModeration       = "moderation.action"
	EventBotReady         = "bot.ready"
)

// Event is a domain event published to listeners
type Event struct {
	Type      string      `json:"type"`
	GuildID   string      `json:"guildId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType, guildID string, data interface{}) Event {
	return Event{Type: eventType, GuildID: guildID, Data: data, Timestamp: time.Now()}
}

// Notifier receives domain events. Implementations must not block the caller.
type Notifier interface {
	Notify(Event)
}

// Multi broadcasts to every non-nil notifier
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Nop drops every event
type Nop struct{}

// Notify implements Notifier
func (Nop) Notify(Event) {}

// Func adapts a function to Notifier
type Func func(Event)

// Notify implements Notifier
func (f Func) Notify(e Event) { f(e) }
