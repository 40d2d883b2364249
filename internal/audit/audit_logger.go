package audit

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Event struct {
	Timestamp     time.Time
	EventType     string
	TransactionID string
	UserID        string
	Amount        int64
	Status        string
	Details       map[string]string
}

// Logger writes one structured record per money-moving decision.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("audit")}
}

func (a *Logger) LogCredit(transactionID, userID string, amount, balanceAfter int64, paymentID string) {
	a.write(Event{
		Timestamp:     time.Now().UTC(),
		EventType:     "CREDIT",
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Status:        "SUCCESS",
		Details:       map[string]string{"payment_id": paymentID, "balance_after": strconv.FormatInt(balanceAfter, 10)},
	})
}

func (a *Logger) LogDebit(transactionID, userID string, amount, balanceAfter int64, description string) {
	a.write(Event{
		Timestamp:     time.Now().UTC(),
		EventType:     "DEBIT",
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Status:        "SUCCESS",
		Details:       map[string]string{"description": description, "balance_after": strconv.FormatInt(balanceAfter, 10)},
	})
}

// LogWebhook records the terminal state of one webhook delivery.
func (a *Logger) LogWebhook(paymentID, userID, state, reason string) {
	a.write(Event{
		Timestamp:     time.Now().UTC(),
		EventType:     "WEBHOOK",
		TransactionID: paymentID,
		UserID:        userID,
		Status:        state,
		Details:       map[string]string{"reason": reason},
	})
}

func (a *Logger) LogError(transactionID, userID string, err error) {
	a.write(Event{
		Timestamp:     time.Now().UTC(),
		EventType:     "ERROR",
		TransactionID: transactionID,
		UserID:        userID,
		Status:        "FAILED",
		Details:       map[string]string{"error": err.Error()},
	})
}

func (a *Logger) write(e Event) {
	fields := []zap.Field{
		zap.Time("timestamp", e.Timestamp),
		zap.String("event_type", e.EventType),
		zap.String("transaction_id", e.TransactionID),
		zap.String("user_id", e.UserID),
		zap.Int64("amount", e.Amount),
		zap.String("status", e.Status),
	}
	for k, v := range e.Details {
		if v != "" {
			fields = append(fields, zap.String(k, v))
		}
	}
	a.log.Info("audit", fields...)
}
