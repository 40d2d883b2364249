package services

import "errors"

var (
	// Webhook
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrDuplicatePayment = errors.New("payment already credited")
	ErrOrderMismatch    = errors.New("payment does not match its order")

	// Ledger
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrConcurrentModification = errors.New("concurrent modification of credit account")
	ErrLedgerUnavailable      = errors.New("credit ledger unavailable")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrDuplicateTransaction   = errors.New("duplicate ledger transaction")

	// Orders, gateway and consumers
	ErrPackageNotFound    = errors.New("credit package not found")
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrLLMUnavailable     = errors.New("llm provider unavailable")
)

var (
	errNilEntry      = errors.New("ledger entry builder returned nil")
	errEntryMismatch = errors.New("ledger entry amount does not match balance change")
)
