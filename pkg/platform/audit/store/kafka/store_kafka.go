package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "landregistry/pkg/platform/audit"
)

// Store produces audit events to a Kafka topic, keyed by subject so that all
// events for one property land on the same partition in order.
type Store struct {
	client *kgo.Client
	topic  string
}

type message struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Height    uint64    `json:"height"`
	Principal string    `json:"principal,omitempty"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

func New(brokers []string, topic string) (*Store, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no seed brokers")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

// EnsureTopic creates the audit topic if it does not already exist.
func (s *Store) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(s.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", s.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(encode(event))
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Store) Close() {
	s.client.Close()
}

func encode(e audit.Event) message {
	return message{
		ID:        e.ID,
		Category:  string(e.Category),
		Timestamp: e.Timestamp.UTC(),
		Height:    e.Height,
		Principal: e.Principal,
		Subject:   e.Subject,
		Action:    e.Action,
		Decision:  e.Decision,
		Reason:    e.Reason,
		RequestID: e.RequestID,
	}
}

// Decode parses a record value produced by Append.
func Decode(value []byte) (audit.Event, error) {
	var m message
	if err := json.Unmarshal(value, &m); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	return audit.Event{
		ID:        m.ID,
		Category:  audit.EventCategory(m.Category),
		Timestamp: m.Timestamp,
		Height:    m.Height,
		Principal: m.Principal,
		Subject:   m.Subject,
		Action:    m.Action,
		Decision:  m.Decision,
		Reason:    m.Reason,
		RequestID: m.RequestID,
	}, nil
}
