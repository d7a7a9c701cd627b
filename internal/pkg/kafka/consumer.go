package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// EventHandler reacts to one consumed workflow event.
type EventHandler func(event entity.WorkflowEvent) error

// LogEvent is the default handler: it records the outcome of each attempt.
func LogEvent(event entity.WorkflowEvent) error {
	entry := logrus.WithFields(logrus.Fields{
		"session_id": event.SessionID,
		"attempt":    event.Attempt,
		"filename":   event.Filename,
		"at":         event.Time,
	})

	switch event.State {
	case entity.StateResult:
		entry.Info("Graduation photo generated")
	case entity.StateError:
		entry.WithField("error_kind", event.ErrorKind).Warn("Graduation photo generation failed")
	default:
		entry.WithField("state", event.State).Debug("Ignoring workflow event")
	}
	return nil
}

// DecodeEvent parses a message value produced by Notifier.Publish.
func DecodeEvent(value []byte) (entity.WorkflowEvent, error) {
	var event entity.WorkflowEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return entity.WorkflowEvent{}, err
	}
	if event.SessionID == "" {
		return entity.WorkflowEvent{}, errors.New("workflow event has no session id")
	}
	return event, nil
}

// StartEventConsumer reads workflow events until ctx is cancelled.
func StartEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handle EventHandler) {

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1e6, // 1MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	defer reader.Close()

	logrus.Info("Workflow event consumer started...")
	logrus.Infof("Connected to Kafka brokers: %v", brokers)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Workflow event consumer stopped")
				return
			}
			logrus.Errorf("Error reading message from Kafka: %v", err)
			continue
		}

		logrus.Debugf("Received message from topic %s [partition %d, offset %d]",
			msg.Topic, msg.Partition, msg.Offset)

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			logrus.Errorf("Failed to parse workflow event: %v", err)
			continue
		}

		if err := handle(event); err != nil {
			logrus.Errorf("Handling event for session %s failed: %v", event.SessionID, err)
		}
	}
}
