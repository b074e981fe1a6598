package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MessageCapture records every message delivered on a set of topics.
type MessageCapture struct {
	mu       sync.RWMutex
	messages map[string][]*message.Message
}

// CaptureTopics subscribes to each topic and records what arrives until ctx ends.
func CaptureTopics(ctx context.Context, sub message.Subscriber, topics ...string) (*MessageCapture, error) {
	mc := &MessageCapture{messages: make(map[string][]*message.Message)}
	for _, topic := range topics {
		ch, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		go func(topic string, ch <-chan *message.Message) {
			for msg := range ch {
				mc.mu.Lock()
				mc.messages[topic] = append(mc.messages[topic], msg)
				mc.mu.Unlock()
				msg.Ack()
			}
		}(topic, ch)
	}
	return mc, nil
}

// GetMessages returns captured messages for a specific topic
func (mc *MessageCapture) GetMessages(topic string) []*message.Message {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	msgs := make([]*message.Message, len(mc.messages[topic]))
	copy(msgs, mc.messages[topic])
	return msgs
}

// WaitForMessages waits for a specific number of messages on a topic with timeout
func (mc *MessageCapture) WaitForMessages(topic string, expectedCount int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(mc.GetMessages(topic)) >= expectedCount {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return false
}

// ParsePayload decodes a captured message.
func ParsePayload[T any](msg *message.Message) (*T, error) {
	var out T
	if err := json.Unmarshal(msg.Payload, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &out, nil
}
