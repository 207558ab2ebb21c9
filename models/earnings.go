package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settlement statuses for an event's earnings. "locked" is an administrative
// hold and is never cleared by recompute, only by explicit admin action.
const (
	SettlementPending = "pending"
	SettlementReady   = "ready"
	SettlementLocked  = "locked"
)

// Supported settlement currencies
const (
	CurrencyHTG = "HTG"
	CurrencyUSD = "USD"
)

// EventEarnings is the per-event ledger aggregate, derived from confirmed
// ticket sales. All monetary values are integer cents.
type EventEarnings struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID             primitive.ObjectID `bson:"eventId" json:"eventId"`
	OrganizerID         primitive.ObjectID `bson:"organizerId" json:"organizerId"`
	GrossSales          int64              `bson:"grossSales" json:"grossSales"`
	TicketsSold         int                `bson:"ticketsSold" json:"ticketsSold"`
	PlatformFee         int64              `bson:"platformFee" json:"platformFee"`
	ProcessingFees      int64              `bson:"processingFees" json:"processingFees"`
	NetAmount           int64              `bson:"netAmount" json:"netAmount"`
	AvailableToWithdraw int64              `bson:"availableToWithdraw" json:"availableToWithdraw"`
	WithdrawnAmount     int64              `bson:"withdrawnAmount" json:"withdrawnAmount"`
	SettlementStatus    string             `bson:"settlementStatus" json:"settlementStatus"`
	SettlementReadyDate time.Time          `bson:"settlementReadyDate" json:"settlementReadyDate"`
	Currency            string             `bson:"currency" json:"currency"`
	EventCountry        string             `bson:"eventCountry,omitempty" json:"eventCountry,omitempty"`
	EventEndDate        time.Time          `bson:"eventEndDate" json:"eventEndDate"`
	AdminHold           bool               `bson:"adminHold" json:"adminHold"`
	AdminHoldReason     string             `bson:"adminHoldReason,omitempty" json:"adminHoldReason,omitempty"`
	LastCalculatedAt    time.Time          `bson:"lastCalculatedAt" json:"lastCalculatedAt"`
}

// Ticket statuses as reported by the ticket-issuance service. Only valid and
// confirmed tickets count toward the ledger.
const (
	TicketValid     = "valid"
	TicketConfirmed = "confirmed"
	TicketPending   = "pending"
	TicketRefunded  = "refunded"
)

// Ticket is a sold ticket as ingested from the ticket-issuance service.
type Ticket struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID        primitive.ObjectID `bson:"eventId" json:"eventId"`
	OrganizerID    primitive.ObjectID `bson:"organizerId" json:"organizerId"`
	Status         string             `bson:"status" json:"status"`
	PurchasedAt    time.Time          `bson:"purchasedAt" json:"purchasedAt"`
	TierID         string             `bson:"tierId" json:"tierId"`
	TierName       string             `bson:"tierName" json:"tierName"`
	UnitPriceCents int64              `bson:"unitPriceCents" json:"unitPriceCents"`
	Currency       string             `bson:"currency" json:"currency"`
	PaymentMethod  string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentID      string             `bson:"paymentId" json:"paymentId"`
}

// Counts reports whether the ticket contributes to the earnings ledger.
func (t *Ticket) Counts() bool {
	return t.Status == TicketValid || t.Status == TicketConfirmed
}

// TicketConfirmation is the inbound payload from the ticket-issuance service.
// TicketID is the issuance service's stable ticket identifier; ingestion is
// keyed on it so redelivered confirmations cannot double-count a sale.
type TicketConfirmation struct {
	EventID        string    `json:"eventId" validate:"required"`
	OrganizerID    string    `json:"organizerId" validate:"required"`
	TicketID       string    `json:"ticketId" validate:"required"`
	Status         string    `json:"status" validate:"required"`
	PriceCents     int64     `json:"priceCents" validate:"gte=0"`
	Currency       string    `json:"currency" validate:"required,oneof=HTG USD"`
	TierID         string    `json:"tierId"`
	TierName       string    `json:"tierName"`
	PurchasedAt    time.Time `json:"purchasedAt"`
	EventEndDate   time.Time `json:"eventEndDate"`
	EventCountry   string    `json:"eventCountry"`
	PaymentMethod  string    `json:"paymentMethod"`
	PaymentID      string    `json:"paymentId"`
}
