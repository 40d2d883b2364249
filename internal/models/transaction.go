package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PaymentStatus is the processor-reported status of a payment entity.
type PaymentStatus string

const (
	PaymentCreated    PaymentStatus = "created"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
	// PaymentUnhandled covers every status this service does not know about.
	PaymentUnhandled PaymentStatus = "unhandled"
)

// ParsePaymentStatus maps a raw status string onto the known set.
func ParsePaymentStatus(raw string) PaymentStatus {
	switch s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PaymentCreated, PaymentAuthorized, PaymentCaptured, PaymentPaid, PaymentFailed, PaymentRefunded:
		return s
	default:
		return PaymentUnhandled
	}
}

// OrderStatus tracks a payment order on our side.
type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// PaymentOrder is a purchase intent registered with the payment processor.
type PaymentOrder struct {
	OrderID          string      `json:"orderId" db:"order_id"`
	UserID           string      `json:"userId" db:"user_id"`
	PackageID        string      `json:"packageId,omitempty" db:"package_id"`
	Amount           int64       `json:"amount" db:"amount"` // in paise
	Currency         string      `json:"currency" db:"currency"`
	CreditsRequested int64       `json:"creditsRequested" db:"credits_requested"`
	Receipt          string      `json:"receipt" db:"receipt"`
	Status           OrderStatus `json:"status" db:"status"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}

// CreditPackage is a purchasable bundle of credits. Price is in rupees.
type CreditPackage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Credits     int64  `json:"credits"`
	Discount    int    `json:"discount,omitempty"` // percent
	Description string `json:"description,omitempty"`
	PaymentLink string `json:"paymentLink,omitempty"`
}

// AmountMinorUnits returns the package price in paise.
func (p CreditPackage) AmountMinorUnits() int64 {
	return p.Price * 100
}

// WebhookEvent is the processor notification body, decoded only after the
// signature over the raw bytes has been verified.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity *PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// PaymentEntity returns the nested payment entity or nil.
func (e *WebhookEvent) PaymentEntity() *PaymentEntity {
	if e.Payload.Payment == nil {
		return nil
	}
	return e.Payload.Payment.Entity
}

// PaymentEntity is the payment object embedded in a webhook or returned by
// the gateway API.
type PaymentEntity struct {
	ID       string       `json:"id"`
	OrderID  string       `json:"order_id"`
	Status   string       `json:"status"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Notes    PaymentNotes `json:"notes"`
}

// PaymentNotes carries the metadata we attach to an order at creation time.
type PaymentNotes struct {
	UserID    string    `json:"userId"`
	Credits   NoteValue `json:"credits"`
	PackageID string    `json:"packageId,omitempty"`
}

// UnmarshalJSON treats an empty notes array, which processors send when an
// order has no notes, the same as an absent object.
func (n *PaymentNotes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || (len(trimmed) > 0 && trimmed[0] == '[') {
		var items []json.RawMessage
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &items); err != nil {
				return err
			}
			if len(items) > 0 {
				return fmt.Errorf("notes: expected an object, got an array of %d", len(items))
			}
		}
		*n = PaymentNotes{}
		return nil
	}
	type plain PaymentNotes
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*n = PaymentNotes(out)
	return nil
}

// NoteValue accepts either a JSON string or a JSON number. Processors echo
// notes back as strings, but hand-built payloads often carry numbers.
type NoteValue string

func (v *NoteValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = NoteValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = NoteValue(n.String())
	return nil
}

// Int parses the value as a base-10 integer.
func (v NoteValue) Int() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
}
