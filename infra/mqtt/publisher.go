package mqtt

import (
	"fmt"
	"sync"

	"github.com/todatrack/todatrack/core/events"
	corefeed "github.com/todatrack/todatrack/core/feed"
)

// Publisher mirrors the core feed.Publisher interface.
type Publisher = corefeed.Publisher

// MockFeed records published events for tests.
type MockFeed struct {
	mu     sync.Mutex
	Events []events.Event
	Fail   bool
}

// NewMockFeed creates a new MockFeed.
func NewMockFeed() *MockFeed {
	return &MockFeed{}
}

// PublishEvent stores the event or fails when configured to.
func (m *MockFeed) PublishEvent(ev events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Events = append(m.Events, ev)
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockFeed) Published() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Event, len(m.Events))
	copy(out, m.Events)
	return out
}
