// Package notify delivers fire-and-forget user-facing messages. Failures
// are logged, never returned to the caller.
package notify

import (
	"context"

	"food-distribution-backend/events"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Recipient string `json:"recipient,omitempty"`
}

type Sink interface {
	Notify(ctx context.Context, n Notification)
}

type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Notify(ctx context.Context, n Notification) {
	fields := []zap.Field{zap.String("level", string(n.Level)), zap.String("recipient", n.Recipient)}
	if n.Level == LevelError {
		s.Log.Warn(n.Message, fields...)
		return
	}
	s.Log.Info(n.Message, fields...)
}

// BusSink publishes notifications for websocket delivery.
type BusSink struct {
	Bus *events.Bus
}

func (s BusSink) Notify(ctx context.Context, n Notification) {
	s.Bus.Publish(events.Event{
		Topic: events.TopicNotification,
		Type:  "notification." + string(n.Level),
		Key:   n.Recipient,
		Data:  n,
	})
}

type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		s.Notify(ctx, n)
	}
}

func Success(ctx context.Context, s Sink, recipient, message string) {
	if s != nil {
		s.Notify(ctx, Notification{Level: LevelSuccess, Message: message, Recipient: recipient})
	}
}

func Error(ctx context.Context, s Sink, recipient, message string) {
	if s != nil {
		s.Notify(ctx, Notification{Level: LevelError, Message: message, Recipient: recipient})
	}
}
