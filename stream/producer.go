package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rakawidhi/canteen-app/utils"
)

// Envelope is the wire form of a mirrored hub event.
type Envelope struct {
	Topic      string      `json:"topic"`
	Event      string      `json:"event"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Producer mirrors hub events onto a Kafka topic for downstream
// consumers (dashboards, analytics). Writes go through a buffered inbox
// drained by a single goroutine, so publishing never blocks a request.
type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closeCh   chan struct{}
	closeOnce sync.Once
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start launches the drain goroutine. It runs until Close.
func (p *Producer) Start() {
	go func() {
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				utils.ErrorLogger.Printf("stream: write: %v", err)
			}
		}
		_ = p.w.Close()
		close(p.closeCh)
	}()
}

// Publish satisfies the services publisher interface. The hub topic
// becomes the partition key so events for one audience stay ordered.
func (p *Producer) Publish(topic, event string, data interface{}) {
	value, err := json.Marshal(Envelope{
		Topic:      topic,
		Event:      event,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		utils.ErrorLogger.Printf("stream: marshal %s: %v", event, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(topic),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(event)},
		},
	}
	select {
	case p.inbox <- msg:
	default:
		utils.ErrorLogger.Printf("stream: inbox full, dropping %s", event)
	}
}

// Close makes the drain goroutine flush remaining messages and exit.
// Safe to call more than once.
func (p *Producer) Close() {
	p.closeOnce.Do(func() { close(p.inbox) })
}

// WaitClosed blocks until the drain goroutine has finished.
func (p *Producer) WaitClosed() { <-p.closeCh }
