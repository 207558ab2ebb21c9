package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
)

// ProfileStore persists payout profiles and verification documents.
type ProfileStore interface {
	GetByRail(ctx context.Context, organizerID primitive.ObjectID, rail string) (*models.PayoutProfile, error)
	GetLegacy(ctx context.Context, organizerID primitive.ObjectID) (*models.LegacyPayoutRecord, error)
	Save(ctx context.Context, profile *models.PayoutProfile) error
	DocumentsByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.VerificationDocument, error)
	GetOrganizer(ctx context.Context, organizerID primitive.ObjectID) (*models.Organizer, error)
}

// ConnectAccountStatus is the onboarding state of an external card-gateway
// payout account.
type ConnectAccountStatus struct {
	DetailsSubmitted bool `json:"detailsSubmitted"`
	ChargesEnabled   bool `json:"chargesEnabled"`
	PayoutsEnabled   bool `json:"payoutsEnabled"`
}

// FullyOnboarded reports whether the account can both charge and pay out.
func (s *ConnectAccountStatus) FullyOnboarded() bool {
	return s.DetailsSubmitted && s.ChargesEnabled && s.PayoutsEnabled
}

// GatewayClient retrieves account status from the external card gateway.
type GatewayClient interface {
	AccountStatus(ctx context.Context, accountID string) (*ConnectAccountStatus, error)
}

// RailForCountry maps an event's country to the payout rail its organizer
// must use. US and CA events settle through the card-gateway marketplace
// account; everything else goes through the manual haiti rail.
func RailForCountry(country string) string {
	switch country {
	case "US", "CA":
		return models.RailCardGatewayConnect
	default:
		return models.RailHaiti
	}
}

// ProfileResolver loads and derives the payout profile an organizer uses for
// a given event country.
type ProfileResolver struct {
	profiles ProfileStore
	gateway  GatewayClient
}

// NewProfileResolver creates a resolver over the given store and gateway.
func NewProfileResolver(profiles ProfileStore, gateway GatewayClient) *ProfileResolver {
	return &ProfileResolver{profiles: profiles, gateway: gateway}
}

// Resolve returns the organizer's profile for the rail the country requires.
// The profile status and verification triad are recomputed from verification
// documents on every call; stored values are never trusted. When no per-rail
// profile exists a legacy unified record is consulted, and failing that a
// not_setup profile is returned.
func (r *ProfileResolver) Resolve(ctx context.Context, organizerID primitive.ObjectID, country string) (*models.PayoutProfile, error) {
	rail := RailForCountry(country)

	profile, err := r.profiles.GetByRail(ctx, organizerID, rail)
	if err != nil {
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		profile = r.fromLegacy(ctx, organizerID, rail)
	}

	docs, err := r.profiles.DocumentsByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	profile.Verification = deriveTriad(docs)
	profile.Status = deriveProfileStatus(profile)
	return profile, nil
}

// fromLegacy builds a profile view from the old unified payout record, or a
// bare not_setup profile when the organizer has nothing at all.
func (r *ProfileResolver) fromLegacy(ctx context.Context, organizerID primitive.ObjectID, rail string) *models.PayoutProfile {
	profile := &models.PayoutProfile{
		OrganizerID: organizerID,
		Rail:        rail,
	}
	legacy, err := r.profiles.GetLegacy(ctx, organizerID)
	if err != nil {
		return profile
	}
	// Infer the rail shape from the legacy provider/location fields.
	switch {
	case legacy.Provider == "stripe" || legacy.AccountID != "":
		if rail == models.RailCardGatewayConnect {
			profile.Connect = &models.ConnectRailDetails{AccountID: legacy.AccountID}
		}
	case legacy.MoncashNumber != "" || legacy.Country == "HT":
		if rail == models.RailHaiti {
			profile.Haiti = &models.HaitiRailDetails{MoncashNumber: legacy.MoncashNumber}
		}
	}
	return profile
}

// deriveTriad computes the identity/bank/phone verification view from the
// organizer's verification documents. A kind with no document is reported as
// absent, never silently treated as pending. When multiple documents exist
// for one kind, the most recently reviewed (or created) one wins.
func deriveTriad(docs []models.VerificationDocument) models.VerificationTriad {
	triad := models.VerificationTriad{
		Identity: models.VerificationAbsent,
		Bank:     models.VerificationAbsent,
		Phone:    models.VerificationAbsent,
	}
	latest := make(map[string]time.Time)
	for _, doc := range docs {
		if doc.DestinationID != nil {
			// Destination documents belong to the registry, not the profile.
			continue
		}
		at := doc.CreatedAt
		if doc.ReviewedAt != nil {
			at = *doc.ReviewedAt
		}
		if prev, ok := latest[doc.Kind]; ok && !at.After(prev) {
			continue
		}
		latest[doc.Kind] = at
		switch doc.Kind {
		case models.VerificationKindIdentity:
			triad.Identity = doc.Status
		case models.VerificationKindBank:
			triad.Bank = doc.Status
		case models.VerificationKindPhone:
			triad.Phone = doc.Status
		}
	}
	return triad
}

// deriveProfileStatus recomputes the profile status from its verification
// state and rail details.
func deriveProfileStatus(p *models.PayoutProfile) string {
	if p.OnHold {
		return models.ProfileOnHold
	}
	switch p.Rail {
	case models.RailHaiti:
		if p.Haiti == nil {
			return models.ProfileNotSetup
		}
		if p.Verification.Identity == models.VerificationVerified &&
			p.Verification.Bank == models.VerificationVerified {
			return models.ProfileActive
		}
	case models.RailCardGatewayConnect:
		if p.Connect == nil || p.Connect.AccountID == "" {
			return models.ProfileNotSetup
		}
		if p.Verification.Identity == models.VerificationVerified {
			return models.ProfileActive
		}
	default:
		return models.ProfileNotSetup
	}
	if p.Verification.Identity == models.VerificationAbsent &&
		p.Verification.Bank == models.VerificationAbsent &&
		p.Verification.Phone == models.VerificationAbsent {
		return models.ProfileNotSetup
	}
	return models.ProfilePendingVerification
}

// PublishGateResult explains whether a paid event may be published.
type PublishGateResult struct {
	Allowed bool     `json:"allowed"`
	Rail    string   `json:"rail"`
	Reasons []string `json:"reasons,omitempty"`
}

// CheckPublishGate enforces the server-side payout-readiness check at event
// publish time: identity must be verified, and the rail must be able to
// receive funds. For the card-gateway rail the external account status is
// fetched live rather than trusted from storage.
func (r *ProfileResolver) CheckPublishGate(ctx context.Context, organizerID primitive.ObjectID, country string) (*PublishGateResult, error) {
	profile, err := r.Resolve(ctx, organizerID, country)
	if err != nil {
		return nil, err
	}

	result := &PublishGateResult{Rail: profile.Rail}
	if profile.Verification.Identity != models.VerificationVerified {
		result.Reasons = append(result.Reasons, "identity not verified")
	}

	switch profile.Rail {
	case models.RailHaiti:
		if profile.Status != models.ProfileActive {
			result.Reasons = append(result.Reasons, "bank payout profile is not active")
		}
	case models.RailCardGatewayConnect:
		if profile.Connect == nil || profile.Connect.AccountID == "" {
			result.Reasons = append(result.Reasons, "no external payout account")
			break
		}
		status, err := r.gateway.AccountStatus(ctx, profile.Connect.AccountID)
		if err != nil {
			return nil, &models.ExternalRailError{Provider: "cardGateway", Reason: err.Error()}
		}
		if !status.FullyOnboarded() {
			result.Reasons = append(result.Reasons, "external payout account onboarding incomplete")
		}
	}

	result.Allowed = len(result.Reasons) == 0
	return result, nil
}
