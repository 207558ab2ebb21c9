package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
	"github.com/jlouissaint/tikepam_backend/security"
	"github.com/jlouissaint/tikepam_backend/utils"
)

// DestinationStore persists bank payout destinations.
type DestinationStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.BankDestination, error)
	ListByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.BankDestination, error)
	Insert(ctx context.Context, dest *models.BankDestination) error
	Save(ctx context.Context, dest *models.BankDestination) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ClearPrimary(ctx context.Context, organizerID primitive.ObjectID) error
	VerificationStatus(ctx context.Context, destinationID primitive.ObjectID) (string, error)
}

// StepUpVerifier is the OTP collaborator interface. RequireRecentStepUp
// raises a VerificationRequiredError when no fresh challenge exists;
// ConsumeStepUp invalidates the token one-shot and atomically.
type StepUpVerifier interface {
	RequireRecentStepUp(ctx context.Context, organizerID string) error
	ConsumeStepUp(ctx context.Context, organizerID string) error
}

// DestinationRegistry manages the organizer's payout bank accounts: one
// primary plus any number of secondaries, each verified independently.
type DestinationRegistry struct {
	destinations DestinationStore
	profiles     ProfileStore
	resolver     *ProfileResolver
	stepUp       StepUpVerifier
	cipherKey    []byte
	now          func() time.Time
}

// NewDestinationRegistry wires the registry to its collaborators.
func NewDestinationRegistry(destinations DestinationStore, profiles ProfileStore, resolver *ProfileResolver, stepUp StepUpVerifier, cipherKey []byte) *DestinationRegistry {
	return &DestinationRegistry{
		destinations: destinations,
		profiles:     profiles,
		resolver:     resolver,
		stepUp:       stepUp,
		cipherKey:    cipherKey,
		now:          time.Now,
	}
}

// List returns the organizer's destinations with per-destination
// verification resolved. A destination with no verification document is
// reported as absent, not pending.
func (r *DestinationRegistry) List(ctx context.Context, organizerID primitive.ObjectID) ([]models.BankDestination, error) {
	dests, err := r.destinations.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	for i := range dests {
		status, err := r.destinations.VerificationStatus(ctx, dests[i].ID)
		if err != nil {
			return nil, err
		}
		dests[i].Verification = status
	}
	return dests, nil
}

// GetOwned loads a destination and verifies it belongs to the organizer.
func (r *DestinationRegistry) GetOwned(ctx context.Context, organizerID, destinationID primitive.ObjectID) (*models.BankDestination, error) {
	dest, err := r.destinations.GetByID(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	if dest.OrganizerID != organizerID {
		return nil, &models.AuthorizationError{Msg: "destination does not belong to this organizer"}
	}
	return dest, nil
}

// Add registers a new bank destination. Requires an active haiti payout
// profile, a fresh one-shot step-up token, and an account-holder name that
// plausibly matches the organizer's legal or display name. The token is
// consumed atomically right before persisting, so two concurrent calls with
// the same token cannot both succeed.
func (r *DestinationRegistry) Add(ctx context.Context, organizerID primitive.ObjectID, details *models.BankDetails) (*models.BankDestination, error) {
	if err := r.stepUp.RequireRecentStepUp(ctx, organizerID.Hex()); err != nil {
		return nil, err
	}

	profile, err := r.resolver.Resolve(ctx, organizerID, "HT")
	if err != nil {
		return nil, err
	}
	if profile.Status != models.ProfileActive {
		return nil, &models.ValidationError{Msg: "an active haiti payout profile is required before adding bank destinations"}
	}

	organizer, err := r.profiles.GetOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if !utils.NamesMatch(details.AccountHolder, organizer.LegalName) &&
		!utils.NamesMatch(details.AccountHolder, organizer.DisplayName) {
		return nil, &models.ValidationError{Msg: "account holder name does not match the organizer's registered name"}
	}

	encrypted, err := security.EncryptAccountNumber(r.cipherKey, details.AccountNumber)
	if err != nil {
		return nil, err
	}

	existing, err := r.destinations.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	dest := &models.BankDestination{
		OrganizerID:   organizerID,
		AccountHolder: details.AccountHolder,
		AccountNumber: encrypted,
		LastFour:      security.MaskedLastFour(details.AccountNumber),
		BankName:      details.BankName,
		RoutingNumber: details.RoutingNumber,
		SwiftCode:     details.SwiftCode,
		IsPrimary:     details.IsPrimary || len(existing) == 0,
		CreatedAt:     r.now(),
		UpdatedAt:     r.now(),
	}

	if err := r.stepUp.ConsumeStepUp(ctx, organizerID.Hex()); err != nil {
		return nil, err
	}

	if dest.IsPrimary && len(existing) > 0 {
		if err := r.destinations.ClearPrimary(ctx, organizerID); err != nil {
			return nil, err
		}
	}
	if err := r.destinations.Insert(ctx, dest); err != nil {
		return nil, err
	}
	dest.Verification = models.VerificationAbsent
	return dest, nil
}

// SetPrimary switches the organizer's primary destination. Mutation is
// step-up gated like creation.
func (r *DestinationRegistry) SetPrimary(ctx context.Context, organizerID, destinationID primitive.ObjectID) (*models.BankDestination, error) {
	if err := r.stepUp.RequireRecentStepUp(ctx, organizerID.Hex()); err != nil {
		return nil, err
	}
	dest, err := r.GetOwned(ctx, organizerID, destinationID)
	if err != nil {
		return nil, err
	}
	if err := r.stepUp.ConsumeStepUp(ctx, organizerID.Hex()); err != nil {
		return nil, err
	}
	if err := r.destinations.ClearPrimary(ctx, organizerID); err != nil {
		return nil, err
	}
	dest.IsPrimary = true
	dest.UpdatedAt = r.now()
	if err := r.destinations.Save(ctx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// Remove deletes a secondary destination. The primary cannot be removed
// while secondaries exist, because exactly one primary must remain.
func (r *DestinationRegistry) Remove(ctx context.Context, organizerID, destinationID primitive.ObjectID) error {
	dest, err := r.GetOwned(ctx, organizerID, destinationID)
	if err != nil {
		return err
	}
	if dest.IsPrimary {
		others, err := r.destinations.ListByOrganizer(ctx, organizerID)
		if err != nil {
			return err
		}
		if len(others) > 1 {
			return &models.ValidationError{Msg: "switch the primary destination before removing this one"}
		}
	}
	return r.destinations.Delete(ctx, destinationID)
}

// Snapshot encrypts inline bank details for embedding on a withdrawal
// request that does not save a destination. The account number gets the same
// at-rest treatment as a saved destination's.
func (r *DestinationRegistry) Snapshot(details *models.BankDetails) (*models.BankDetailsSnapshot, error) {
	encrypted, err := security.EncryptAccountNumber(r.cipherKey, details.AccountNumber)
	if err != nil {
		return nil, err
	}
	return &models.BankDetailsSnapshot{
		AccountHolder: details.AccountHolder,
		AccountNumber: encrypted,
		LastFour:      security.MaskedLastFour(details.AccountNumber),
		BankName:      details.BankName,
		RoutingNumber: details.RoutingNumber,
		SwiftCode:     details.SwiftCode,
	}, nil
}

// DecryptForDispatch recovers the plaintext account number for manual payout
// execution. This is the only read path allowed to see the full number.
func (r *DestinationRegistry) DecryptForDispatch(dest *models.BankDestination) (string, error) {
	return dest.AccountNumber.Decrypt(r.cipherKey)
}
