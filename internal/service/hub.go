package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/opengather/gather/internal/metrics"
)

// Topic identifies a realtime notification stream
type Topic string

const (
	TopicEventCreated    Topic = "eventCreated"
	TopicEventUpdated    Topic = "eventUpdated"
	TopicEventDeleted    Topic = "eventDeleted"
	TopicAttendeeUpdated Topic = "attendeeUpdated"

	// TopicHeartbeat keeps idle connections alive
	TopicHeartbeat Topic = "heartbeat"
)

// Notification represents a server-sent event delivered to subscribers
type Notification struct {
	Topic Topic       `json:"topic"`
	Data  interface{} `json:"data"`
}

// Format returns the SSE wire form of the notification
func (n *Notification) Format() string {
	data, _ := json.Marshal(n.Data)
	return "event: " + string(n.Topic) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID            string
	Notifications chan *Notification
	Done          chan struct{}
}

// Hub broadcasts notifications to all connected SSE clients.
// Delivery is best effort: a subscriber whose buffer is full misses the
// notification rather than blocking the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
}

// NewHub creates a new hub and starts its heartbeat loop
func NewHub() *Hub {
	hub := &Hub{
		subscribers: make(map[string]*Subscriber),
		done:        make(chan struct{}),
	}
	hub.heartbeat = time.NewTicker(30 * time.Second)
	go hub.sendHeartbeats()
	return hub
}

// Subscribe registers a new subscriber
func (h *Hub) Subscribe(subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:            subscriberID,
		Notifications: make(chan *Notification, 100), // Buffer to prevent blocking
		Done:          make(chan struct{}),
	}
	h.subscribers[subscriberID] = sub
	metrics.SSESubscribers.Set(float64(len(h.subscribers)))

	return sub
}

// Unsubscribe removes a subscriber and closes its channels
func (h *Hub) Unsubscribe(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subscribers[subscriberID]; ok {
		close(sub.Done)
		close(sub.Notifications)
		delete(h.subscribers, subscriberID)
	}
	metrics.SSESubscribers.Set(float64(len(h.subscribers)))
}

// Publish delivers a notification to every subscriber
func (h *Hub) Publish(n *Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	metrics.NotificationsPublished.WithLabelValues(string(n.Topic)).Inc()

	for _, sub := range h.subscribers {
		select {
		case sub.Notifications <- n:
		default:
			// Buffer full, skip this subscriber
			metrics.NotificationsDropped.Inc()
		}
	}
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *Hub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			h.Publish(&Notification{
				Topic: TopicHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			})
		case <-h.done:
			return
		}
	}
}

// Close stops the hub and disconnects all subscribers
func (h *Hub) Close() {
	close(h.done)
	h.heartbeat.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		close(sub.Done)
		close(sub.Notifications)
		delete(h.subscribers, id)
	}
	metrics.SSESubscribers.Set(0)
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
