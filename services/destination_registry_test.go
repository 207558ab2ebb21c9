package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
)

type registryFixture struct {
	registry     *DestinationRegistry
	destinations *memDestinationStore
	profiles     *memProfileStore
	stepUp       *fakeStepUp
	organizerID  primitive.ObjectID
}

// newRegistryFixture builds a registry for an organizer with an active haiti
// profile and a fresh step-up token.
func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	f := &registryFixture{
		destinations: newMemDestinationStore(),
		profiles:     newMemProfileStore(),
		stepUp:       &fakeStepUp{available: true},
		organizerID:  primitive.NewObjectID(),
	}
	f.profiles.organizer = &models.Organizer{
		ID:          f.organizerID,
		LegalName:   "Jean Baptiste Louissaint",
		DisplayName: "JB Events",
	}
	f.profiles.profiles[f.organizerID.Hex()+"/"+models.RailHaiti] = &models.PayoutProfile{
		OrganizerID: f.organizerID,
		Rail:        models.RailHaiti,
		Haiti:       &models.HaitiRailDetails{MoncashNumber: "50937000000"},
	}
	f.profiles.docs = []models.VerificationDocument{
		{OrganizerID: f.organizerID, Kind: models.VerificationKindIdentity, Status: models.VerificationVerified, CreatedAt: now},
		{OrganizerID: f.organizerID, Kind: models.VerificationKindBank, Status: models.VerificationVerified, CreatedAt: now},
	}

	resolver := NewProfileResolver(f.profiles, &fakeGateway{})
	f.registry = NewDestinationRegistry(f.destinations, f.profiles, resolver, f.stepUp, testCipherKey)
	f.registry.now = func() time.Time { return now }
	return f
}

func bankDetails(holder string) *models.BankDetails {
	return &models.BankDetails{
		AccountHolder: holder,
		AccountNumber: "001234567890",
		BankName:      "Sogebank",
	}
}

func TestAddDestination(t *testing.T) {
	f := newRegistryFixture(t)

	dest, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if !dest.IsPrimary {
		t.Error("first destination is not primary")
	}
	if dest.Verification != models.VerificationAbsent {
		t.Errorf("verification = %q, want absent", dest.Verification)
	}
	if !strings.HasSuffix(dest.LastFour, "7890") || strings.Contains(dest.LastFour, "001234") {
		t.Errorf("LastFour = %q, want masked form ending in 7890", dest.LastFour)
	}
	if strings.Contains(string(dest.AccountNumber), "001234567890") {
		t.Error("account number stored in plaintext")
	}

	plain, err := f.registry.DecryptForDispatch(dest)
	if err != nil {
		t.Fatalf("DecryptForDispatch: %v", err)
	}
	if plain != "001234567890" {
		t.Errorf("decrypted = %q, want the original account number", plain)
	}
}

func TestAddAcceptsDisplayName(t *testing.T) {
	f := newRegistryFixture(t)
	if _, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("JB Events")); err != nil {
		t.Fatalf("Add with display name: %v", err)
	}
}

func TestAddStepUpOneShot(t *testing.T) {
	f := newRegistryFixture(t)

	if _, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint")); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	// The token was consumed; a second creation needs a fresh challenge.
	_, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	var stepUp *models.VerificationRequiredError
	if !errors.As(err, &stepUp) {
		t.Fatalf("second Add error = %v, want VerificationRequiredError", err)
	}
	if len(f.destinations.destinations) != 1 {
		t.Errorf("destination count = %d, want 1", len(f.destinations.destinations))
	}
}

func TestAddWithoutStepUp(t *testing.T) {
	f := newRegistryFixture(t)
	f.stepUp.available = false

	_, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	var stepUp *models.VerificationRequiredError
	if !errors.As(err, &stepUp) {
		t.Fatalf("error = %v, want VerificationRequiredError", err)
	}
	if len(f.destinations.destinations) != 0 {
		t.Error("destination persisted without step-up")
	}
}

func TestAddRequiresActiveProfile(t *testing.T) {
	f := newRegistryFixture(t)
	f.profiles.docs = nil // nothing verified

	_, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestAddNameMismatch(t *testing.T) {
	f := newRegistryFixture(t)

	_, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Somebody Else"))
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	// The rejection happens before consumption, so the token survives for a
	// corrected retry.
	if !f.stepUp.available {
		t.Error("step-up token consumed by a rejected request")
	}
}

func TestAddSecondPrimaryDemotesFirst(t *testing.T) {
	f := newRegistryFixture(t)

	first, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	if err != nil {
		t.Fatalf("first Add: %v", err)
	}

	f.stepUp.available = true
	details := bankDetails("Jean Baptiste Louissaint")
	details.IsPrimary = true
	second, err := f.registry.Add(context.Background(), f.organizerID, details)
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}

	if !f.destinations.destinations[second.ID].IsPrimary {
		t.Error("new destination is not primary")
	}
	if f.destinations.destinations[first.ID].IsPrimary {
		t.Error("old primary was not demoted")
	}
}

func TestSetPrimary(t *testing.T) {
	f := newRegistryFixture(t)

	first, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	if err != nil {
		t.Fatalf("first Add: %v", err)
	}
	f.stepUp.available = true
	second, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}

	f.stepUp.available = true
	if _, err := f.registry.SetPrimary(context.Background(), f.organizerID, second.ID); err != nil {
		t.Fatalf("SetPrimary: %v", err)
	}
	if f.destinations.destinations[first.ID].IsPrimary {
		t.Error("old primary still set")
	}
	if !f.destinations.destinations[second.ID].IsPrimary {
		t.Error("new primary not set")
	}

	// Mutation is step-up gated like creation.
	_, err = f.registry.SetPrimary(context.Background(), f.organizerID, first.ID)
	var stepUp *models.VerificationRequiredError
	if !errors.As(err, &stepUp) {
		t.Errorf("SetPrimary without token error = %v, want VerificationRequiredError", err)
	}
}

func TestRemovePrimaryBlockedWhileSecondariesExist(t *testing.T) {
	f := newRegistryFixture(t)

	first, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	if err != nil {
		t.Fatalf("first Add: %v", err)
	}
	f.stepUp.available = true
	second, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}

	err = f.registry.Remove(context.Background(), f.organizerID, first.ID)
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("removing primary error = %v, want ValidationError", err)
	}

	if err := f.registry.Remove(context.Background(), f.organizerID, second.ID); err != nil {
		t.Fatalf("removing secondary: %v", err)
	}
	// With no secondaries left the primary may go too.
	if err := f.registry.Remove(context.Background(), f.organizerID, first.ID); err != nil {
		t.Fatalf("removing last destination: %v", err)
	}
	if len(f.destinations.destinations) != 0 {
		t.Errorf("destination count = %d, want 0", len(f.destinations.destinations))
	}
}

func TestListResolvesVerification(t *testing.T) {
	f := newRegistryFixture(t)
	dest, err := f.registry.Add(context.Background(), f.organizerID, bankDetails("Jean Baptiste Louissaint"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	f.destinations.verification[dest.ID] = models.VerificationPending

	list, err := f.registry.List(context.Background(), f.organizerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}
	if list[0].Verification != models.VerificationPending {
		t.Errorf("verification = %q, want pending", list[0].Verification)
	}
}
