package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"conversion-tracking-service/internal/identity"
	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/ports"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrNoBrokers = errors.New("kafka sink requires at least one broker")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer keyed by event id so retries of the same
// event land on the same partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// KafkaConnect checks that one of the brokers answers before the collector
// is upgraded.
func KafkaConnect(brokers []string, publisher *KafkaPublisher) ConnectFunc {
	return func(ctx context.Context) (ports.DirectCollector, error) {
		if len(brokers) == 0 {
			return nil, ErrNoBrokers
		}
		var errs []error
		for _, b := range brokers {
			conn, err := kafka.DialContext(ctx, "tcp", b)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			_ = conn.Close()
			return publisher, nil
		}
		return nil, fmt.Errorf("dial kafka: %w", errors.Join(errs...))
	}
}

// KafkaPublisher is a direct collector that publishes every command to a
// topic for a downstream forwarder.
type KafkaPublisher struct {
	w      messageWriter
	logger *zap.Logger
}

func NewKafkaPublisher(w messageWriter, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{w: w, logger: logger.Named("kafka")}
}

var _ ports.DirectCollector = (*KafkaPublisher)(nil)

type collectorMessage struct {
	Verb     domain.Verb          `json:"verb"`
	Event    string               `json:"event,omitempty"`
	Payload  *domain.EventPayload `json:"payload,omitempty"`
	Identity *identity.Hashed     `json:"identity,omitempty"`
	Page     domain.PageContext   `json:"page"`
	SentAt   time.Time            `json:"sent_at"`
}

func (k *KafkaPublisher) Track(ctx context.Context, event string, p domain.EventPayload, page domain.PageContext) error {
	return k.publish(ctx, p.EventID, collectorMessage{Verb: domain.VerbTrack, Event: event, Payload: &p, Page: page})
}

func (k *KafkaPublisher) Page(ctx context.Context, p domain.EventPayload, page domain.PageContext) error {
	return k.publish(ctx, p.EventID, collectorMessage{Verb: domain.VerbPage, Payload: &p, Page: page})
}

func (k *KafkaPublisher) Identify(ctx context.Context, h identity.Hashed, page domain.PageContext) error {
	return k.publish(ctx, h.ExternalID, collectorMessage{Verb: domain.VerbIdentify, Identity: &h, Page: page})
}

func (k *KafkaPublisher) publish(ctx context.Context, key string, m collectorMessage) error {
	m.SentAt = time.Now().UTC()

	value, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode collector message: %w: %w", ports.ErrRejected, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "verb", Value: []byte(m.Verb)},
		},
	}
	if m.Event != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "event", Value: []byte(m.Event)})
	}

	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", m.Verb, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.w.Close()
}
