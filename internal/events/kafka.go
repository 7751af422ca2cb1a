package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/pkg/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by doctor id, so one doctor's events
// stay ordered within a partition.
type KafkaPublisher struct {
	writer  MessageWriter
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(w MessageWriter, m *metrics.Collector, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, metrics: m, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Type, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(ev.DoctorID)),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	})
	p.metrics.ObserveEvent(string(ev.Type), err)
	if err != nil {
		p.log.Error("failed to publish event",
			zap.String("type", string(ev.Type)),
			zap.String("appointment_id", ev.AppointmentID),
			zap.Error(err),
		)
		return fmt.Errorf("publishing %s event: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewLogPublisher(m *metrics.Collector, log *zap.Logger) *LogPublisher {
	return &LogPublisher{metrics: m, log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	p.log.Info("appointment event",
		zap.String("type", string(ev.Type)),
		zap.String("event_id", ev.ID),
		zap.String("appointment_id", ev.AppointmentID),
		zap.Int("doctor_id", ev.DoctorID),
		zap.String("status", string(ev.Status)),
	)
	p.metrics.ObserveEvent(string(ev.Type), nil)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
