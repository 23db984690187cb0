package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/bookleaf/support-platform/internal/model"
)

const (
	// StreamName is the name of the support events stream.
	StreamName = "SUPPORT"

	// SubjectPrefix is the prefix for all support event subjects.
	SubjectPrefix = "support"
)

// Publisher handles JetStream publishing of run events.
type Publisher struct {
	client *Client
}

// NewPublisher creates a new publisher.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the support events stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Completed bot run outcomes for channel adapters and escalation workers",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// RunSubject returns the subject for a run event.
func RunSubject(platform model.Platform, eventType model.RunEventType) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, platform, eventType)
}

// PublishRun publishes a completed run event.
func (p *Publisher) PublishRun(ctx context.Context, event *model.RunEvent) (uint64, error) {
	subject := RunSubject(event.Platform, event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run event: %w", err)
	}

	ack, err := p.client.JetStream().Publish(ctx, subject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish run event: %w", err)
	}

	return ack.Sequence, nil
}
