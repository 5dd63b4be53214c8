// Package telemetry defines the outbound publisher used to mirror dispatch
// activity onto an external broker.
package telemetry

import "github.com/swiftresponder/swiftresponder/core/events"

// Publisher pushes live tracking events to an external transport.
type Publisher interface {
	PublishPosition(ev events.PositionEvent) error
	PublishStatus(ev events.StatusEvent) error
	Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishPosition(events.PositionEvent) error { return nil }
func (NopPublisher) PublishStatus(events.StatusEvent) error     { return nil }
func (NopPublisher) Close()                                     {}
