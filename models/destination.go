package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/security"
)

// BankDestination is one payout bank account on the haiti rail. An organizer
// has exactly one primary destination plus any number of secondaries, each
// verified independently. The account number is stored encrypted; display
// paths only ever see the masked last four digits.
type BankDestination struct {
	ID            primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	OrganizerID   primitive.ObjectID       `bson:"organizerId" json:"organizerId"`
	AccountHolder string                   `bson:"accountHolder" json:"accountHolder"`
	AccountNumber security.EncryptedField  `bson:"accountNumber" json:"-"`
	LastFour      string                   `bson:"lastFour" json:"lastFour"`
	BankName      string                   `bson:"bankName" json:"bankName"`
	RoutingNumber string                   `bson:"routingNumber,omitempty" json:"routingNumber,omitempty"`
	SwiftCode     string                   `bson:"swiftCode,omitempty" json:"swiftCode,omitempty"`
	IsPrimary     bool                     `bson:"isPrimary" json:"isPrimary"`
	Verification  string                   `bson:"-" json:"verification"`
	CreatedAt     time.Time                `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time                `bson:"updatedAt" json:"updatedAt"`
}

// BankDetails is the inbound shape for a new destination.
type BankDetails struct {
	AccountHolder string `json:"accountHolder" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"required,min=4"`
	BankName      string `json:"bankName" validate:"required"`
	RoutingNumber string `json:"routingNumber"`
	SwiftCode     string `json:"swiftCode"`
	IsPrimary     bool   `json:"isPrimary"`
}
