package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/security"
)

// Withdrawal methods
const (
	MethodBank    = "bank"
	MethodMoncash = "moncash"
)

// Withdrawal statuses. Manual rails go pending -> completed directly, where
// completed means handed off for manual execution, not funds delivered.
// Instant rails go pending -> processing -> completed|failed.
const (
	WithdrawalPending    = "pending"
	WithdrawalProcessing = "processing"
	WithdrawalCompleted  = "completed"
	WithdrawalFailed     = "failed"
)

// MinimumWithdrawalCents is the smallest payout the platform will process.
const MinimumWithdrawalCents int64 = 5000

// WithdrawalRequest is one withdrawal attempt against an event's earnings.
// Amount is immutable once created; each terminal status is reached at most
// once.
type WithdrawalRequest struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrganizerID       primitive.ObjectID   `bson:"organizerId" json:"organizerId"`
	EventID           primitive.ObjectID   `bson:"eventId" json:"eventId"`
	Amount            int64                `bson:"amount" json:"amount"`
	Currency          string               `bson:"currency" json:"currency"`
	Method            string               `bson:"method" json:"method"`
	Status            string               `bson:"status" json:"status"`
	Instant           bool                 `bson:"instant" json:"instant"`
	FeeCents          int64                `bson:"feeCents,omitempty" json:"feeCents,omitempty"`
	PayoutAmountCents int64                `bson:"payoutAmountCents,omitempty" json:"payoutAmountCents,omitempty"`
	BankDestinationID *primitive.ObjectID  `bson:"bankDestinationId,omitempty" json:"bankDestinationId,omitempty"`
	BankSnapshot      *BankDetailsSnapshot `bson:"bankSnapshot,omitempty" json:"bankSnapshot,omitempty"`
	MoncashNumber     string               `bson:"moncashNumber,omitempty" json:"moncashNumber,omitempty"`
	IdempotencyKey    string               `bson:"idempotencyKey" json:"idempotencyKey"`
	FailureReason     string               `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	ProcessedAt       *time.Time           `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
}

// BankDetailsSnapshot preserves one-off inline bank details on the request
// itself, so manual execution knows where to send the funds and the auditor
// can tie the disbursement to an account. The account number is stored
// encrypted exactly like a saved destination's.
type BankDetailsSnapshot struct {
	AccountHolder string                  `bson:"accountHolder" json:"accountHolder"`
	AccountNumber security.EncryptedField `bson:"accountNumber" json:"-"`
	LastFour      string                  `bson:"lastFour" json:"lastFour"`
	BankName      string                  `bson:"bankName" json:"bankName"`
	RoutingNumber string                  `bson:"routingNumber,omitempty" json:"routingNumber,omitempty"`
	SwiftCode     string                  `bson:"swiftCode,omitempty" json:"swiftCode,omitempty"`
}

// BankWithdrawalRequest is the inbound payload for a manual bank withdrawal.
// Either BankDestinationID or BankDetails must be set.
type BankWithdrawalRequest struct {
	Amount            int64        `json:"amount" validate:"required,gt=0"`
	BankDestinationID string       `json:"bankDestinationId,omitempty"`
	BankDetails       *BankDetails `json:"bankDetails,omitempty"`
	SaveDestination   bool         `json:"saveDestination"`
}

// MoncashWithdrawalRequest is the inbound payload for a MonCash withdrawal.
type MoncashWithdrawalRequest struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	MoncashNumber string `json:"moncashNumber" validate:"required"`
}

// WithdrawalResult is returned to the client after a withdrawal is accepted.
type WithdrawalResult struct {
	WithdrawalID      string `json:"withdrawalId"`
	Instant           bool   `json:"instant"`
	FeeCents          int64  `json:"feeCents,omitempty"`
	PayoutAmountCents int64  `json:"payoutAmountCents,omitempty"`
}
