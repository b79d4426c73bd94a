package services

// Publisher is the notification transport seen by the services. The
// websocket hub implements it; so does the optional Kafka mirror.
// Delivery is fire-and-forget and must never block the caller.
type Publisher interface {
	Publish(topic, event string, data interface{})
}

// MultiPublisher fans one publish out to several sinks.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(topic, event string, data interface{}) {
	for _, p := range m {
		p.Publish(topic, event, data)
	}
}
