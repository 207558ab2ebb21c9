package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
)

func TestRailForCountry(t *testing.T) {
	cases := []struct {
		country string
		want    string
	}{
		{"US", models.RailCardGatewayConnect},
		{"CA", models.RailCardGatewayConnect},
		{"HT", models.RailHaiti},
		{"DO", models.RailHaiti},
		{"", models.RailHaiti},
	}
	for _, tc := range cases {
		if got := RailForCountry(tc.country); got != tc.want {
			t.Errorf("RailForCountry(%q) = %q, want %q", tc.country, got, tc.want)
		}
	}
}

func haitiProfile(organizerID primitive.ObjectID) *models.PayoutProfile {
	return &models.PayoutProfile{
		OrganizerID: organizerID,
		Rail:        models.RailHaiti,
		Haiti:       &models.HaitiRailDetails{MoncashNumber: "50937000000"},
	}
}

func TestResolveNoDocumentsIsAbsent(t *testing.T) {
	// No verification documents means absent, never pending.
	profiles := newMemProfileStore()
	organizerID := primitive.NewObjectID()
	profiles.profiles[organizerID.Hex()+"/"+models.RailHaiti] = haitiProfile(organizerID)

	resolver := NewProfileResolver(profiles, &fakeGateway{})
	profile, err := resolver.Resolve(context.Background(), organizerID, "HT")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := models.VerificationTriad{
		Identity: models.VerificationAbsent,
		Bank:     models.VerificationAbsent,
		Phone:    models.VerificationAbsent,
	}
	if profile.Verification != want {
		t.Errorf("triad = %+v, want all absent", profile.Verification)
	}
	if profile.Status != models.ProfileNotSetup {
		t.Errorf("status = %q, want not_setup", profile.Status)
	}
}

func TestResolveDerivesStatusFromDocuments(t *testing.T) {
	now := time.Now()
	organizerID := primitive.NewObjectID()

	cases := []struct {
		name       string
		docs       []models.VerificationDocument
		wantStatus string
	}{
		{
			"identity pending",
			[]models.VerificationDocument{
				{OrganizerID: organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationPending, CreatedAt: now},
			},
			models.ProfilePendingVerification,
		},
		{
			"identity verified, bank pending",
			[]models.VerificationDocument{
				{OrganizerID: organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationVerified, CreatedAt: now},
				{OrganizerID: organizerID, Kind: models.VerificationKindBank, Status: models.VerificationPending, CreatedAt: now},
			},
			models.ProfilePendingVerification,
		},
		{
			"identity and bank verified",
			[]models.VerificationDocument{
				{OrganizerID: organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationVerified, CreatedAt: now},
				{OrganizerID: organizerID, Kind: models.VerificationKindBank, Status: models.VerificationVerified, CreatedAt: now},
			},
			models.ProfileActive,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profiles := newMemProfileStore()
			profiles.profiles[organizerID.Hex()+"/"+models.RailHaiti] = haitiProfile(organizerID)
			profiles.docs = tc.docs

			resolver := NewProfileResolver(profiles, &fakeGateway{})
			profile, err := resolver.Resolve(context.Background(), organizerID, "HT")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if profile.Status != tc.wantStatus {
				t.Errorf("status = %q, want %q", profile.Status, tc.wantStatus)
			}
		})
	}
}

func TestResolveLatestDocumentWins(t *testing.T) {
	organizerID := primitive.NewObjectID()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.AddDate(0, 2, 0)

	profiles := newMemProfileStore()
	profiles.profiles[organizerID.Hex()+"/"+models.RailHaiti] = haitiProfile(organizerID)
	profiles.docs = []models.VerificationDocument{
		{OrganizerID: organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationVerified, CreatedAt: old},
		{OrganizerID: organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationFailed, CreatedAt: recent},
	}

	resolver := NewProfileResolver(profiles, &fakeGateway{})
	profile, err := resolver.Resolve(context.Background(), organizerID, "HT")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if profile.Verification.Identity != models.VerificationFailed {
		t.Errorf("identity = %q, want failed (most recent document)", profile.Verification.Identity)
	}
}

func TestResolveIgnoresDestinationDocuments(t *testing.T) {
	organizerID := primitive.NewObjectID()
	destinationID := primitive.NewObjectID()

	profiles := newMemProfileStore()
	profiles.profiles[organizerID.Hex()+"/"+models.RailHaiti] = haitiProfile(organizerID)
	profiles.docs = []models.VerificationDocument{
		{OrganizerID: organizerID, Kind: models.VerificationKindBank, Status: models.VerificationVerified,
			DestinationID: &destinationID, CreatedAt: time.Now()},
	}

	resolver := NewProfileResolver(profiles, &fakeGateway{})
	profile, err := resolver.Resolve(context.Background(), organizerID, "HT")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if profile.Verification.Bank != models.VerificationAbsent {
		t.Errorf("bank = %q, want absent (destination documents do not count)", profile.Verification.Bank)
	}
}

func TestResolveOnHold(t *testing.T) {
	organizerID := primitive.NewObjectID()
	profiles := newMemProfileStore()
	p := haitiProfile(organizerID)
	p.OnHold = true
	profiles.profiles[organizerID.Hex()+"/"+models.RailHaiti] = p

	resolver := NewProfileResolver(profiles, &fakeGateway{})
	profile, err := resolver.Resolve(context.Background(), organizerID, "HT")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if profile.Status != models.ProfileOnHold {
		t.Errorf("status = %q, want on_hold", profile.Status)
	}
}

func TestResolveLegacyFallback(t *testing.T) {
	organizerID := primitive.NewObjectID()

	t.Run("moncash record maps to the haiti rail", func(t *testing.T) {
		profiles := newMemProfileStore()
		profiles.legacy = &models.LegacyPayoutRecord{
			OrganizerID:   organizerID,
			Country:       "HT",
			MoncashNumber: "50931112222",
		}
		resolver := NewProfileResolver(profiles, &fakeGateway{})
		profile, err := resolver.Resolve(context.Background(), organizerID, "HT")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if profile.Haiti == nil || profile.Haiti.MoncashNumber != "50931112222" {
			t.Errorf("haiti details = %+v, want legacy moncash number", profile.Haiti)
		}
	})

	t.Run("stripe record maps to the connect rail", func(t *testing.T) {
		profiles := newMemProfileStore()
		profiles.legacy = &models.LegacyPayoutRecord{
			OrganizerID: organizerID,
			Provider:    "stripe",
			AccountID:   "acct_legacy123",
		}
		resolver := NewProfileResolver(profiles, &fakeGateway{})
		profile, err := resolver.Resolve(context.Background(), organizerID, "US")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if profile.Connect == nil || profile.Connect.AccountID != "acct_legacy123" {
			t.Errorf("connect details = %+v, want legacy account ID", profile.Connect)
		}
	})

	t.Run("nothing at all yields not_setup", func(t *testing.T) {
		profiles := newMemProfileStore()
		resolver := NewProfileResolver(profiles, &fakeGateway{})
		profile, err := resolver.Resolve(context.Background(), organizerID, "HT")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if profile.Status != models.ProfileNotSetup {
			t.Errorf("status = %q, want not_setup", profile.Status)
		}
	})
}

func TestCheckPublishGateHaiti(t *testing.T) {
	organizerID := primitive.NewObjectID()
	now := time.Now()

	profiles := newMemProfileStore()
	profiles.profiles[organizerID.Hex()+"/"+models.RailHaiti] = haitiProfile(organizerID)
	profiles.docs = []models.VerificationDocument{
		{OrganizerID: organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationVerified, CreatedAt: now},
		{OrganizerID: organizerID, Kind: models.VerificationKindBank, Status: models.VerificationVerified, CreatedAt: now},
	}

	resolver := NewProfileResolver(profiles, &fakeGateway{})
	result, err := resolver.CheckPublishGate(context.Background(), organizerID, "HT")
	if err != nil {
		t.Fatalf("CheckPublishGate: %v", err)
	}
	if !result.Allowed {
		t.Errorf("gate closed for an active profile: %v", result.Reasons)
	}
	if result.Rail != models.RailHaiti {
		t.Errorf("rail = %q, want haiti", result.Rail)
	}

	// Without bank verification the profile is not active and the gate closes.
	profiles.docs = profiles.docs[:1]
	result, err = resolver.CheckPublishGate(context.Background(), organizerID, "HT")
	if err != nil {
		t.Fatalf("CheckPublishGate: %v", err)
	}
	if result.Allowed {
		t.Error("gate open without an active profile")
	}
}

func TestCheckPublishGateConnect(t *testing.T) {
	organizerID := primitive.NewObjectID()
	now := time.Now()

	newProfiles := func() *memProfileStore {
		profiles := newMemProfileStore()
		profiles.profiles[organizerID.Hex()+"/"+models.RailCardGatewayConnect] = &models.PayoutProfile{
			OrganizerID: organizerID,
			Rail:        models.RailCardGatewayConnect,
			Connect:     &models.ConnectRailDetails{AccountID: "acct_123"},
		}
		profiles.docs = []models.VerificationDocument{
			{OrganizerID: organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationVerified, CreatedAt: now},
		}
		return profiles
	}

	t.Run("fully onboarded", func(t *testing.T) {
		gateway := &fakeGateway{status: &ConnectAccountStatus{DetailsSubmitted: true, ChargesEnabled: true, PayoutsEnabled: true}}
		resolver := NewProfileResolver(newProfiles(), gateway)
		result, err := resolver.CheckPublishGate(context.Background(), organizerID, "US")
		if err != nil {
			t.Fatalf("CheckPublishGate: %v", err)
		}
		if !result.Allowed {
			t.Errorf("gate closed for a fully onboarded account: %v", result.Reasons)
		}
	})

	t.Run("onboarding incomplete", func(t *testing.T) {
		gateway := &fakeGateway{status: &ConnectAccountStatus{DetailsSubmitted: true, ChargesEnabled: false, PayoutsEnabled: true}}
		resolver := NewProfileResolver(newProfiles(), gateway)
		result, err := resolver.CheckPublishGate(context.Background(), organizerID, "US")
		if err != nil {
			t.Fatalf("CheckPublishGate: %v", err)
		}
		if result.Allowed {
			t.Error("gate open for an incomplete account")
		}
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		gateway := &fakeGateway{err: errors.New("503 from upstream")}
		resolver := NewProfileResolver(newProfiles(), gateway)
		_, err := resolver.CheckPublishGate(context.Background(), organizerID, "US")
		var railErr *models.ExternalRailError
		if !errors.As(err, &railErr) {
			t.Fatalf("error = %v, want ExternalRailError", err)
		}
	})

	t.Run("no account", func(t *testing.T) {
		profiles := newMemProfileStore()
		resolver := NewProfileResolver(profiles, &fakeGateway{})
		result, err := resolver.CheckPublishGate(context.Background(), organizerID, "US")
		if err != nil {
			t.Fatalf("CheckPublishGate: %v", err)
		}
		if result.Allowed {
			t.Error("gate open with no payout account at all")
		}
	})
}
