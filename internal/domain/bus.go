package domain

import "context"

// EventBus decouples the request path from audit persistence. Handlers
// publish submission and alert events; the audit worker subscribes and
// writes them to the repository. Supports Go channels (single node) or NATS
// (multi-node). All methods take sessionID for per-session isolation.
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, sessionID string, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, sessionID string, topic string, handler MessageHandler) (Subscription, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Topic     string `json:"topic"`
	Payload   []byte `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// Standard topic names for the audit pipeline.
const (
	TopicTransactionSubmitted = "frauddetect.transaction.submitted"
	TopicTransactionValidated = "frauddetect.transaction.validated"
	TopicAlertRaised          = "frauddetect.alert.raised"
)

// SessionWildcard subscribes across all sessions. Used by the audit worker.
const SessionWildcard = "*"

// StatusChange is the payload of TopicTransactionValidated events.
type StatusChange struct {
	TxID   string            `json:"txId"`
	Status TransactionStatus `json:"status"`
}
