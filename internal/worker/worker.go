// Package worker persists audit events off the request path. It subscribes
// to the submission, validation and alert topics across all sessions and
// writes each event to the repository.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

// Worker consumes bus events and writes them to the audit repository.
type Worker struct {
	bus  domain.EventBus
	repo domain.Repository

	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
}

// New creates an audit worker.
func New(bus domain.EventBus, repo domain.Repository) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		repo:   repo,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the audit topics across all sessions.
func (w *Worker) Start() error {
	topics := map[string]domain.MessageHandler{
		domain.TopicTransactionSubmitted: w.handleSubmitted,
		domain.TopicTransactionValidated: w.handleValidated,
		domain.TopicAlertRaised:          w.handleAlert,
	}

	for topic, handler := range topics {
		sub, err := w.bus.Subscribe(w.ctx, domain.SessionWildcard, topic, handler)
		if err != nil {
			w.Stop()
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		w.subscriptions = append(w.subscriptions, sub)
	}

	slog.Info("audit worker started", "topics", len(w.subscriptions))
	return nil
}

// Stop cancels the subscriptions.
func (w *Worker) Stop() {
	w.cancel()
	for _, sub := range w.subscriptions {
		_ = sub.Unsubscribe()
	}
	w.subscriptions = nil
}

func (w *Worker) handleSubmitted(ctx context.Context, msg *domain.Message) error {
	var tx domain.Transaction
	if err := json.Unmarshal(msg.Payload, &tx); err != nil {
		slog.Warn("dropping undecodable submission event", "error", err)
		return nil
	}

	if err := w.repo.SaveTransaction(ctx, msg.SessionID, &tx); err != nil {
		slog.Error("failed to persist transaction",
			"session_id", msg.SessionID,
			"tx_id", tx.ID,
			"error", err,
		)
		return err
	}
	return nil
}

func (w *Worker) handleValidated(ctx context.Context, msg *domain.Message) error {
	var change domain.StatusChange
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		slog.Warn("dropping undecodable validation event", "error", err)
		return nil
	}

	if err := w.repo.UpdateTransactionStatus(ctx, msg.SessionID, change.TxID, change.Status); err != nil {
		slog.Error("failed to persist status change",
			"session_id", msg.SessionID,
			"tx_id", change.TxID,
			"error", err,
		)
		return err
	}
	return nil
}

func (w *Worker) handleAlert(ctx context.Context, msg *domain.Message) error {
	if err := w.repo.SaveAlert(ctx, msg.SessionID, string(msg.Payload)); err != nil {
		slog.Error("failed to persist alert",
			"session_id", msg.SessionID,
			"error", err,
		)
		return err
	}
	return nil
}
