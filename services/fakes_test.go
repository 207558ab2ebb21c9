package services

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
)

// In-memory stores mimicking the Mongo repositories. GetByEvent returns a
// copy, like a decode from the database would, so unsaved mutations are
// never visible to other readers.

type memEarningsStore struct {
	mu      sync.Mutex
	byEvent map[primitive.ObjectID]models.EventEarnings
	saveErr error
}

func newMemEarningsStore() *memEarningsStore {
	return &memEarningsStore{byEvent: make(map[primitive.ObjectID]models.EventEarnings)}
}

func (s *memEarningsStore) GetByEvent(ctx context.Context, eventID primitive.ObjectID) (*models.EventEarnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	earnings, ok := s.byEvent[eventID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "event earnings"}
	}
	out := earnings
	return &out, nil
}

func (s *memEarningsStore) Save(ctx context.Context, earnings *models.EventEarnings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if earnings.ID.IsZero() {
		earnings.ID = primitive.NewObjectID()
	}
	s.byEvent[earnings.EventID] = *earnings
	return nil
}

type memTicketStore struct {
	mu      sync.Mutex
	tickets []models.Ticket
}

func (s *memTicketStore) Upsert(ctx context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == ticket.ID {
			s.tickets[i] = *ticket
			return nil
		}
	}
	s.tickets = append(s.tickets, *ticket)
	return nil
}

func (s *memTicketStore) CountedByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		if t.EventID == eventID && t.Counts() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTicketStore) PageByEvent(ctx context.Context, eventID primitive.ObjectID, page, limit int) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Ticket
	for _, t := range s.tickets {
		if t.EventID == eventID {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].PurchasedAt.Equal(all[j].PurchasedAt) {
			return all[i].PurchasedAt.After(all[j].PurchasedAt)
		}
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) > 0
	})
	start := page * limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

type memWithdrawalStore struct {
	mu        sync.Mutex
	requests  map[primitive.ObjectID]models.WithdrawalRequest
	createErr error
}

func newMemWithdrawalStore() *memWithdrawalStore {
	return &memWithdrawalStore{requests: make(map[primitive.ObjectID]models.WithdrawalRequest)}
}

func (s *memWithdrawalStore) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	s.requests[req.ID] = *req
	return nil
}

func (s *memWithdrawalStore) MarkProcessing(ctx context.Context, id primitive.ObjectID) error {
	return s.setStatus(id, models.WithdrawalProcessing, "", 0, 0, nil)
}

func (s *memWithdrawalStore) MarkCompleted(ctx context.Context, id primitive.ObjectID, feeCents, payoutCents int64, processedAt time.Time) error {
	return s.setStatus(id, models.WithdrawalCompleted, "", feeCents, payoutCents, &processedAt)
}

func (s *memWithdrawalStore) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, processedAt time.Time) error {
	return s.setStatus(id, models.WithdrawalFailed, reason, 0, 0, &processedAt)
}

func (s *memWithdrawalStore) setStatus(id primitive.ObjectID, status, reason string, fee, payout int64, processedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return errors.New("withdrawal not found")
	}
	req.Status = status
	req.FailureReason = reason
	if fee > 0 {
		req.FeeCents = fee
		req.PayoutAmountCents = payout
	}
	req.ProcessedAt = processedAt
	s.requests[id] = req
	return nil
}

func (s *memWithdrawalStore) ListByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WithdrawalRequest
	for _, req := range s.requests {
		if req.OrganizerID == organizerID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memWithdrawalStore) get(id primitive.ObjectID) (models.WithdrawalRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	return req, ok
}

func (s *memWithdrawalStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type memProfileStore struct {
	profiles  map[string]*models.PayoutProfile
	legacy    *models.LegacyPayoutRecord
	docs      []models.VerificationDocument
	organizer *models.Organizer
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[string]*models.PayoutProfile)}
}

func (s *memProfileStore) GetByRail(ctx context.Context, organizerID primitive.ObjectID, rail string) (*models.PayoutProfile, error) {
	profile, ok := s.profiles[organizerID.Hex()+"/"+rail]
	if !ok {
		return nil, &models.NotFoundError{Resource: "payout profile"}
	}
	out := *profile
	return &out, nil
}

func (s *memProfileStore) GetLegacy(ctx context.Context, organizerID primitive.ObjectID) (*models.LegacyPayoutRecord, error) {
	if s.legacy == nil || s.legacy.OrganizerID != organizerID {
		return nil, &models.NotFoundError{Resource: "legacy payout record"}
	}
	out := *s.legacy
	return &out, nil
}

func (s *memProfileStore) Save(ctx context.Context, profile *models.PayoutProfile) error {
	s.profiles[profile.OrganizerID.Hex()+"/"+profile.Rail] = profile
	return nil
}

func (s *memProfileStore) DocumentsByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.VerificationDocument, error) {
	var out []models.VerificationDocument
	for _, d := range s.docs {
		if d.OrganizerID == organizerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memProfileStore) GetOrganizer(ctx context.Context, organizerID primitive.ObjectID) (*models.Organizer, error) {
	if s.organizer == nil || s.organizer.ID != organizerID {
		return nil, &models.NotFoundError{Resource: "organizer"}
	}
	out := *s.organizer
	return &out, nil
}

type memDestinationStore struct {
	mu           sync.Mutex
	destinations map[primitive.ObjectID]models.BankDestination
	verification map[primitive.ObjectID]string
}

func newMemDestinationStore() *memDestinationStore {
	return &memDestinationStore{
		destinations: make(map[primitive.ObjectID]models.BankDestination),
		verification: make(map[primitive.ObjectID]string),
	}
}

func (s *memDestinationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BankDestination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dest, ok := s.destinations[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "bank destination"}
	}
	out := dest
	return &out, nil
}

func (s *memDestinationStore) ListByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.BankDestination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BankDestination
	for _, dest := range s.destinations {
		if dest.OrganizerID == organizerID {
			out = append(out, dest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memDestinationStore) Insert(ctx context.Context, dest *models.BankDestination) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dest.ID.IsZero() {
		dest.ID = primitive.NewObjectID()
	}
	s.destinations[dest.ID] = *dest
	return nil
}

func (s *memDestinationStore) Save(ctx context.Context, dest *models.BankDestination) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destinations[dest.ID] = *dest
	return nil
}

func (s *memDestinationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.destinations, id)
	return nil
}

func (s *memDestinationStore) ClearPrimary(ctx context.Context, organizerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, dest := range s.destinations {
		if dest.OrganizerID == organizerID && dest.IsPrimary {
			dest.IsPrimary = false
			s.destinations[id] = dest
		}
	}
	return nil
}

func (s *memDestinationStore) VerificationStatus(ctx context.Context, destinationID primitive.ObjectID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.verification[destinationID]; ok {
		return status, nil
	}
	return models.VerificationAbsent, nil
}

// fakeStepUp mimics the Redis-backed step-up store: a token may be checked
// any number of times but consumed exactly once, atomically.
type fakeStepUp struct {
	mu        sync.Mutex
	available bool
}

func (f *fakeStepUp) RequireRecentStepUp(ctx context.Context, organizerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.available {
		return models.NewStepUpRequired("a recent OTP verification is required for this action")
	}
	return nil
}

func (f *fakeStepUp) ConsumeStepUp(ctx context.Context, organizerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.available {
		return models.NewStepUpRequired("step-up token is missing, expired, or already used")
	}
	f.available = false
	return nil
}

// fakeMoncash records transfer attempts and can be told to fail.
type fakeMoncash struct {
	mu         sync.Mutex
	prefunding bool
	failWith   error
	transfers  []fakeTransfer
}

type fakeTransfer struct {
	receiver    string
	amountCents int64
	currency    string
	idemKey     string
}

func (f *fakeMoncash) Transfer(ctx context.Context, receiver string, amountCents int64, currency, idempotencyKey string) (*models.MoncashTransferData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.transfers = append(f.transfers, fakeTransfer{receiver, amountCents, currency, idempotencyKey})
	return &models.MoncashTransferData{TransactionID: "txn-fake", Receiver: receiver, AmountCents: amountCents}, nil
}

func (f *fakeMoncash) PoolBalance(ctx context.Context) (int64, error) {
	return 1_000_000, nil
}

func (f *fakeMoncash) PrefundingEnabled() bool {
	return f.prefunding
}

// fakeGateway returns a canned connected-account status.
type fakeGateway struct {
	status *ConnectAccountStatus
	err    error
}

func (f *fakeGateway) AccountStatus(ctx context.Context, accountID string) (*ConnectAccountStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}
