// Package feed defines the outbound event feed contract. Dispatch
// terminals at the stand subscribe to the feed instead of polling the
// API.
package feed

import "github.com/todatrack/todatrack/core/events"

// Publisher pushes fleet events to subscribed terminals.
type Publisher interface {
	// PublishEvent delivers one event. Implementations decide routing
	// and retention per event kind.
	PublishEvent(ev events.Event) error
}
