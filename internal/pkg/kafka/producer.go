package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Notifier interface {
	Publish(ctx context.Context, event entity.WorkflowEvent) error
	Close() error
}

type kafkaNotifier struct {
	writer *kafka.Writer
	topic  string
}

// NewNotifier connects to brokers and makes sure topic exists. When no broker
// answers it falls back to a notifier that only logs.
func NewNotifier(brokers []string, topic string) Notifier {
	if len(brokers) == 0 {
		logrus.Warn("No Kafka brokers configured, workflow events are only logged")
		return &mockNotifier{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.Infof("Kafka notifier configured for brokers: %v", brokers)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logrus.Warnf("Kafka connection failed: %v", err)
		logrus.Warn("Using mock notifier instead")
		return &mockNotifier{}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Infof("Could not create topic (might already exist): %v", err)
	} else {
		logrus.Infof("Created topic: %s", topic)
	}

	logrus.Infof("Connected to Kafka at %v", brokers)
	return &kafkaNotifier{writer: writer, topic: topic}
}

func (n *kafkaNotifier) Publish(ctx context.Context, event entity.WorkflowEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
		Time:  event.Time,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		logrus.Errorf("Failed to write workflow event to Kafka: %v", err)
		return err
	}

	logrus.WithFields(logrus.Fields{
		"topic":      n.topic,
		"session_id": event.SessionID,
		"state":      event.State,
	}).Debug("Workflow event published")
	return nil
}

func (n *kafkaNotifier) Close() error {
	return n.writer.Close()
}

// mockNotifier для работы без Kafka
type mockNotifier struct{}

func (m *mockNotifier) Publish(ctx context.Context, event entity.WorkflowEvent) error {
	logrus.WithFields(logrus.Fields{
		"session_id": event.SessionID,
		"attempt":    event.Attempt,
		"state":      event.State,
		"error_kind": event.ErrorKind,
	}).Info("MOCK: workflow event")
	return nil
}

func (m *mockNotifier) Close() error {
	return nil
}
