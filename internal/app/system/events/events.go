// Package events publishes moderation outcomes to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultTopic receives every moderation event.
const DefaultTopic = "community.moderation"

// ModerationEvent is the message published after a successful console write.
type ModerationEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`   // user, post, comment, tag
	Action    string    `json:"action"` // edit, delete, create
	ID        string    `json:"id"`
	Actor     string    `json:"actor,omitempty"`
	Before    any       `json:"before,omitempty"`
	After     any       `json:"after,omitempty"`
}

// Key is the partitioning key: all events for one record land in order on
// the same partition.
func (e ModerationEvent) Key() string { return e.Kind + ":" + e.ID }

// FromOutcome builds the event for a mutation outcome.
func FromOutcome(o mutation.Outcome) ModerationEvent {
	ts := o.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return ModerationEvent{
		EventID:   uuid.New().String(),
		Timestamp: ts,
		Kind:      o.Kind,
		Action:    o.Op,
		ID:        o.ID.String(),
		Actor:     o.Actor.Email,
		Before:    o.Before,
		After:     o.After,
	}
}

// Publisher sends moderation events.
type Publisher interface {
	Publish(ctx context.Context, ev ModerationEvent) error
	Close() error
}

// Nop discards every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, ModerationEvent) error { return nil }
func (Nop) Close() error                                  { return nil }

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

// KafkaConfig configures NewKafkaPublisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewKafkaPublisher creates a publisher over a kafka.Writer. The writer
// connects lazily, so a missing broker surfaces on the first Publish.
func NewKafkaPublisher(cfg KafkaConfig, log *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("events: no kafka brokers configured")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, cfg.Topic, log), nil
}

func newKafkaPublisher(w messageWriter, topic string, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{writer: w, topic: topic, log: log}
}

// Publish marshals ev and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, ev ModerationEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("failed to marshal event", zap.Error(err), zap.String("topic", p.topic))
		return err
	}

	p.log.Debug("sending kafka message",
		zap.String("topic", p.topic),
		zap.ByteString("payload", payload))

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.Key()),
		Value: payload,
	})
	if err != nil {
		p.log.Error("failed to write kafka message", zap.Error(err), zap.String("topic", p.topic))
		return err
	}
	p.log.Info("moderation event sent",
		zap.String("topic", p.topic),
		zap.String("event_id", ev.EventID),
		zap.String("key", ev.Key()))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// Observer adapts a Publisher to mutation.Observer. Only successful
// outcomes are published; a publish failure is logged and never affects
// the mutation.
func Observer(pub Publisher, log *zap.Logger) mutation.Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return mutation.ObserverFunc(func(ctx context.Context, o mutation.Outcome) {
		if !o.Succeeded() {
			return
		}
		cctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), log, "publish "+o.Kind+" "+o.Op)
		defer cancel()
		if err := pub.Publish(cctx, FromOutcome(o)); err != nil {
			log.Warn("moderation event not published",
				zap.String("kind", o.Kind),
				zap.String("id", o.ID.String()),
				zap.Error(err))
		}
	})
}
