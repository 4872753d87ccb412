package service

// EventPublisher is the slice of the websocket hub the services depend on.
// Topics follow "request:<id>" for decision feeds and "user:<id>" for
// notification feeds.
type EventPublisher interface {
	Publish(topic, eventType string, payload any)
}

// noopPublisher keeps services usable without a hub (tests, batch tools).
type noopPublisher struct{}

func (noopPublisher) Publish(string, string, any) {}

// NoopPublisher returns a publisher that drops every event.
func NoopPublisher() EventPublisher { return noopPublisher{} }
