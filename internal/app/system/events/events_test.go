package events

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "moderation.test", zap.NewNop())

	ev := ModerationEvent{EventID: "e1", Kind: "comment", Action: mutation.OpDelete, ID: "7", Timestamp: time.Unix(0, 0).UTC()}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	m := w.msgs[0]
	if m.Topic != "moderation.test" || string(m.Key) != "comment:7" {
		t.Errorf("message topic %q key %q", m.Topic, m.Key)
	}
	var got ModerationEvent
	if err := json.Unmarshal(m.Value, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.EventID != "e1" || got.Action != "delete" {
		t.Errorf("payload = %+v", got)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed %v", err, w.closed)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, DefaultTopic, nil)
	if err := p.Publish(context.Background(), ModerationEvent{Kind: "post", ID: "1"}); err == nil {
		t.Error("Publish() should fail")
	}
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(KafkaConfig{}, zap.NewNop()); err == nil {
		t.Error("expected error without brokers")
	}
	p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewKafkaPublisher() error = %v", err)
	}
	if p.topic != DefaultTopic {
		t.Errorf("topic = %q, want %q", p.topic, DefaultTopic)
	}
}

func TestParseBrokers(t *testing.T) {
	got := ParseBrokers(" a:9092, ,b:9092,")
	if want := []string{"a:9092", "b:9092"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ParseBrokers() = %v, want %v", got, want)
	}
	if got := ParseBrokers(""); got != nil {
		t.Errorf("ParseBrokers(\"\") = %v, want nil", got)
	}
}

func TestObserver(t *testing.T) {
	w := &fakeWriter{}
	obs := Observer(newKafkaPublisher(w, DefaultTopic, nil), zap.NewNop())
	ctx := context.Background()

	obs.Observe(ctx, mutation.Outcome{
		Kind: "tag", Op: mutation.OpCreate, ID: models.ID("11"),
		Actor: mutation.Actor{Email: "admin@attijari.com"},
		After: models.Tag{ID: "11", Name: "Crypto"},
	})
	obs.Observe(ctx, mutation.Outcome{Kind: "comment", Op: mutation.OpEdit, ID: "2", Err: errors.New("Erreur HTTP 500")})

	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want only the successful outcome", len(w.msgs))
	}
	var ev ModerationEvent
	_ = json.Unmarshal(w.msgs[0].Value, &ev)
	if ev.Kind != "tag" || ev.Actor != "admin@attijari.com" || ev.EventID == "" {
		t.Errorf("event = %+v", ev)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), ModerationEvent{}); err != nil {
		t.Error(err)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}
