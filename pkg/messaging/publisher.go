package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// ChannelPublisher wraps every event in a Message and sends it to one
// broker channel.
type ChannelPublisher struct {
	broker  Broker
	channel string
}

func NewChannelPublisher(broker Broker, channel string) *ChannelPublisher {
	return &ChannelPublisher{broker: broker, channel: channel}
}

func (p *ChannelPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if err := p.broker.Publish(ctx, p.channel, Message{Type: eventType, Payload: payload}); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Decode splits a raw message into its type and payload, decoding the
// payload into out when out is non-nil.
func Decode(raw []byte, out interface{}) (string, error) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", fmt.Errorf("decode message: %w", err)
	}
	if out != nil && len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, out); err != nil {
			return msg.Type, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
	}
	return msg.Type, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
