package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payout rail identifiers
const (
	RailHaiti              = "haiti"
	RailCardGatewayConnect = "cardGatewayConnect"
)

// Payout profile statuses (derived on read, never trusted from storage)
const (
	ProfileNotSetup            = "not_setup"
	ProfilePendingVerification = "pending_verification"
	ProfileActive              = "active"
	ProfileOnHold              = "on_hold"
)

// Verification states. VerificationAbsent means no verification document
// exists at all, which is distinct from a document that is still pending.
const (
	VerificationAbsent   = "absent"
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
)

// Verification document kinds
const (
	VerificationKindIdentity = "identity"
	VerificationKindBank     = "bank"
	VerificationKindPhone    = "phone"
)

// VerificationTriad is the identity/bank/phone verification view of a payout
// profile, computed from independent verification documents.
type VerificationTriad struct {
	Identity string `bson:"identity" json:"identity"`
	Bank     string `bson:"bank" json:"bank"`
	Phone    string `bson:"phone" json:"phone"`
}

// HaitiRailDetails carries the manual-rail specific profile fields.
type HaitiRailDetails struct {
	Phone         string `bson:"phone,omitempty" json:"phone,omitempty"`
	MoncashNumber string `bson:"moncashNumber,omitempty" json:"moncashNumber,omitempty"`
	InstantOptIn  bool   `bson:"instantOptIn" json:"instantOptIn"`
}

// ConnectRailDetails carries the external card-gateway account reference.
type ConnectRailDetails struct {
	AccountID        string `bson:"accountId,omitempty" json:"accountId,omitempty"`
	DetailsSubmitted bool   `bson:"detailsSubmitted" json:"detailsSubmitted"`
	ChargesEnabled   bool   `bson:"chargesEnabled" json:"chargesEnabled"`
	PayoutsEnabled   bool   `bson:"payoutsEnabled" json:"payoutsEnabled"`
}

// PayoutProfile is one organizer's profile for a single rail. Exactly one of
// Haiti/Connect is set, selected by Rail. Status is recomputed from
// verification documents on every read; the stored value is a cache.
type PayoutProfile struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizerID  primitive.ObjectID  `bson:"organizerId" json:"organizerId"`
	Rail         string              `bson:"rail" json:"rail"`
	Status       string              `bson:"status" json:"status"`
	Verification VerificationTriad   `bson:"verification" json:"verification"`
	Haiti        *HaitiRailDetails   `bson:"haiti,omitempty" json:"haiti,omitempty"`
	Connect      *ConnectRailDetails `bson:"connect,omitempty" json:"connect,omitempty"`
	OnHold       bool                `bson:"onHold" json:"onHold"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// LegacyPayoutRecord is the old unified profile document some organizers
// still carry. The resolver infers the rail from the stored provider and
// location fields when no per-rail profile exists.
type LegacyPayoutRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID   primitive.ObjectID `bson:"organizerId" json:"organizerId"`
	Provider      string             `bson:"provider,omitempty" json:"provider,omitempty"`
	Country       string             `bson:"country,omitempty" json:"country,omitempty"`
	AccountID     string             `bson:"accountId,omitempty" json:"accountId,omitempty"`
	MoncashNumber string             `bson:"moncashNumber,omitempty" json:"moncashNumber,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// VerificationDocument is one reviewed document for an organizer. Destination
// verification uses the same collection with DestinationID set.
type VerificationDocument struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizerID   primitive.ObjectID  `bson:"organizerId" json:"organizerId"`
	Kind          string              `bson:"kind" json:"kind"`
	Status        string              `bson:"status" json:"status"`
	DestinationID *primitive.ObjectID `bson:"destinationId,omitempty" json:"destinationId,omitempty"`
	ReviewedAt    *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}

// Organizer is the minimal organizer record this service reads. Account
// management lives in the identity service.
type Organizer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email       string             `bson:"email" json:"email"`
	LegalName   string             `bson:"legalName" json:"legalName"`
	DisplayName string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
