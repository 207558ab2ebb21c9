package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
)

// DefaultHoldDays is how long after the event ends before funds settle.
const DefaultHoldDays = 7

// EarningsStore persists the per-event ledger aggregate.
type EarningsStore interface {
	GetByEvent(ctx context.Context, eventID primitive.ObjectID) (*models.EventEarnings, error)
	Save(ctx context.Context, earnings *models.EventEarnings) error
}

// TicketStore reads tickets for ledger recompute and audit export. Upsert is
// keyed on the ticket ID so confirmation replays are no-ops.
type TicketStore interface {
	Upsert(ctx context.Context, ticket *models.Ticket) error
	CountedByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Ticket, error)
	PageByEvent(ctx context.Context, eventID primitive.ObjectID, page, limit int) ([]models.Ticket, error)
}

// DeriveSettlementStatus computes the settlement status as a pure function of
// time and the administrative lock. The stored status is only a cache of this.
func DeriveSettlementStatus(now, eventEnd time.Time, holdDays int, adminLock bool) (string, time.Time) {
	readyDate := eventEnd.AddDate(0, 0, holdDays)
	if adminLock {
		return models.SettlementLocked, readyDate
	}
	if !now.Before(readyDate) {
		return models.SettlementReady, readyDate
	}
	return models.SettlementPending, readyDate
}

// Ledger maintains the per-event earnings aggregates. Recompute and
// validate-and-deduct run under a per-event mutex so concurrent withdrawals
// can never both pass the balance check. Instant rails reserve funds before
// the external call and commit or release afterwards, so the lock is never
// held across network I/O.
type Ledger struct {
	earnings EarningsStore
	tickets  TicketStore
	holdDays int
	now      func() time.Time

	mu       sync.Mutex
	locks    map[primitive.ObjectID]*sync.Mutex
	reserved map[primitive.ObjectID]int64
}

// NewLedger creates a ledger over the given stores.
func NewLedger(earnings EarningsStore, tickets TicketStore) *Ledger {
	return &Ledger{
		earnings: earnings,
		tickets:  tickets,
		holdDays: DefaultHoldDays,
		now:      time.Now,
		locks:    make(map[primitive.ObjectID]*sync.Mutex),
		reserved: make(map[primitive.ObjectID]int64),
	}
}

func (l *Ledger) eventLock(eventID primitive.ObjectID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[eventID] = lock
	}
	return lock
}

// Get returns the earnings aggregate with its settlement status refreshed
// from the derivation, never the possibly stale stored value.
func (l *Ledger) Get(ctx context.Context, eventID primitive.ObjectID) (*models.EventEarnings, error) {
	earnings, err := l.earnings.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	status, readyDate := DeriveSettlementStatus(l.now(), earnings.EventEndDate, l.holdDays, earnings.AdminHold)
	earnings.SettlementStatus = status
	earnings.SettlementReadyDate = readyDate
	return earnings, nil
}

// RecordTicket ingests one ticket-confirmation event. The ticket is persisted
// regardless of status so the audit trail is complete, but only valid and
// confirmed tickets feed the recompute. Persistence is keyed on the issuance
// service's ticket ID, so a redelivered confirmation overwrites the same row
// instead of counting the sale twice.
func (l *Ledger) RecordTicket(ctx context.Context, conf *models.TicketConfirmation) (*models.EventEarnings, error) {
	eventID, err := primitive.ObjectIDFromHex(conf.EventID)
	if err != nil {
		return nil, &models.ValidationError{Msg: "invalid event ID"}
	}
	organizerID, err := primitive.ObjectIDFromHex(conf.OrganizerID)
	if err != nil {
		return nil, &models.ValidationError{Msg: "invalid organizer ID"}
	}
	ticketID, err := primitive.ObjectIDFromHex(conf.TicketID)
	if err != nil {
		return nil, &models.ValidationError{Msg: "a valid ticket ID is required"}
	}

	ticket := &models.Ticket{
		ID:             ticketID,
		EventID:        eventID,
		OrganizerID:    organizerID,
		Status:         conf.Status,
		PurchasedAt:    conf.PurchasedAt,
		TierID:         conf.TierID,
		TierName:       conf.TierName,
		UnitPriceCents: conf.PriceCents,
		Currency:       conf.Currency,
		PaymentMethod:  conf.PaymentMethod,
		PaymentID:      conf.PaymentID,
	}
	if ticket.PurchasedAt.IsZero() {
		ticket.PurchasedAt = l.now()
	}
	if err := l.tickets.Upsert(ctx, ticket); err != nil {
		return nil, err
	}

	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	return l.recomputeLocked(ctx, eventID, organizerID, conf)
}

// Recompute rebuilds the aggregate for an event from its counted tickets.
// Recomputing twice over the same ticket set yields identical fields.
func (l *Ledger) Recompute(ctx context.Context, eventID primitive.ObjectID) (*models.EventEarnings, error) {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	return l.recomputeLocked(ctx, eventID, primitive.NilObjectID, nil)
}

func (l *Ledger) recomputeLocked(ctx context.Context, eventID, organizerID primitive.ObjectID, conf *models.TicketConfirmation) (*models.EventEarnings, error) {
	earnings, err := l.earnings.GetByEvent(ctx, eventID)
	if err != nil {
		var notFound *models.NotFoundError
		if conf == nil || !errors.As(err, &notFound) {
			return nil, err
		}
		// First confirmed sale creates the aggregate.
		earnings = &models.EventEarnings{
			EventID:      eventID,
			OrganizerID:  organizerID,
			Currency:     conf.Currency,
			EventEndDate: conf.EventEndDate,
			EventCountry: conf.EventCountry,
		}
	}
	if conf != nil {
		// Keep event metadata current with what the issuance service reports.
		if !conf.EventEndDate.IsZero() {
			earnings.EventEndDate = conf.EventEndDate
		}
		if conf.EventCountry != "" {
			earnings.EventCountry = conf.EventCountry
		}
	}

	tickets, err := l.tickets.CountedByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var gross, platformFee, processingFees int64
	for _, t := range tickets {
		gross += t.UnitPriceCents
		platformFee += PlatformFee(t.UnitPriceCents)
		processingFees += ProcessingFee(t.UnitPriceCents)
	}

	earnings.GrossSales = gross
	earnings.TicketsSold = len(tickets)
	earnings.PlatformFee = platformFee
	earnings.ProcessingFees = processingFees
	earnings.NetAmount = gross - platformFee - processingFees
	earnings.AvailableToWithdraw = earnings.NetAmount - earnings.WithdrawnAmount
	if earnings.AvailableToWithdraw < 0 {
		earnings.AvailableToWithdraw = 0
	}
	status, readyDate := DeriveSettlementStatus(l.now(), earnings.EventEndDate, l.holdDays, earnings.AdminHold)
	earnings.SettlementStatus = status
	earnings.SettlementReadyDate = readyDate
	earnings.LastCalculatedAt = l.now()

	if err := l.earnings.Save(ctx, earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}

// Deduct validates settlement readiness and balance, then moves amount from
// availableToWithdraw to withdrawnAmount. Used by the manual rails, where no
// external call can fail after the deduction.
func (l *Ledger) Deduct(ctx context.Context, eventID primitive.ObjectID, amount int64) (*models.EventEarnings, error) {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	earnings, err := l.validateLocked(ctx, eventID, amount)
	if err != nil {
		return nil, err
	}
	return l.deductLocked(ctx, earnings, amount)
}

// Reserve holds amount against the event's available balance without
// persisting a deduction. The caller must later call CommitReservation or
// ReleaseReservation. This keeps the instant rail's deduct-after-success
// ordering without letting two concurrent withdrawals spend the same cents.
func (l *Ledger) Reserve(ctx context.Context, eventID primitive.ObjectID, amount int64) error {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	if _, err := l.validateLocked(ctx, eventID, amount); err != nil {
		return err
	}
	l.mu.Lock()
	l.reserved[eventID] += amount
	l.mu.Unlock()
	return nil
}

// CommitReservation performs the deduction for a previously reserved amount
// after the external transfer succeeded.
func (l *Ledger) CommitReservation(ctx context.Context, eventID primitive.ObjectID, amount int64) (*models.EventEarnings, error) {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	l.releaseReserved(eventID, amount)
	earnings, err := l.earnings.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return l.deductLocked(ctx, earnings, amount)
}

// ReleaseReservation frees a reservation after a failed external transfer.
// No ledger deduction happens for failed instant transfers.
func (l *Ledger) ReleaseReservation(eventID primitive.ObjectID, amount int64) {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	l.releaseReserved(eventID, amount)
}

func (l *Ledger) releaseReserved(eventID primitive.ObjectID, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reserved[eventID] -= amount
	if l.reserved[eventID] <= 0 {
		delete(l.reserved, eventID)
	}
}

func (l *Ledger) validateLocked(ctx context.Context, eventID primitive.ObjectID, amount int64) (*models.EventEarnings, error) {
	earnings, err := l.earnings.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	status, _ := DeriveSettlementStatus(l.now(), earnings.EventEndDate, l.holdDays, earnings.AdminHold)
	if status != models.SettlementReady {
		return nil, &models.SettlementNotReadyError{Status: status}
	}
	l.mu.Lock()
	available := earnings.AvailableToWithdraw - l.reserved[eventID]
	l.mu.Unlock()
	if amount > available {
		return nil, &models.InsufficientBalanceError{Requested: amount, Available: available}
	}
	return earnings, nil
}

func (l *Ledger) deductLocked(ctx context.Context, earnings *models.EventEarnings, amount int64) (*models.EventEarnings, error) {
	prevAvailable := earnings.AvailableToWithdraw
	prevWithdrawn := earnings.WithdrawnAmount
	earnings.AvailableToWithdraw -= amount
	earnings.WithdrawnAmount += amount
	// A recompute may have shrunk the balance between a reservation's check
	// and its commit (instant transfers are dispatched outside the lock).
	// The transfer already went out, so record the full withdrawal and floor
	// the balance at zero rather than going negative.
	if earnings.AvailableToWithdraw < 0 {
		log.Printf("event %s: deducting %d cents exceeds available %d, clamping balance to 0",
			earnings.EventID.Hex(), amount, prevAvailable)
		earnings.AvailableToWithdraw = 0
	}
	if err := l.earnings.Save(ctx, earnings); err != nil {
		// Roll the in-memory copy back so a retry sees consistent numbers.
		earnings.AvailableToWithdraw = prevAvailable
		earnings.WithdrawnAmount = prevWithdrawn
		return nil, err
	}
	return earnings, nil
}

// Restore is the compensating transaction for a failure that happened after
// a deduction but before the withdrawal could be handed off.
func (l *Ledger) Restore(ctx context.Context, eventID primitive.ObjectID, amount int64) error {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	earnings, err := l.earnings.GetByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	earnings.AvailableToWithdraw += amount
	earnings.WithdrawnAmount -= amount
	if err := l.earnings.Save(ctx, earnings); err != nil {
		log.Printf("CRITICAL: failed to restore %d cents to event %s ledger: %v", amount, eventID.Hex(), err)
		return err
	}
	return nil
}

// SetAdminHold places or clears the administrative settlement lock. The lock
// is sticky: recompute never clears it.
func (l *Ledger) SetAdminHold(ctx context.Context, eventID primitive.ObjectID, hold bool, reason string) (*models.EventEarnings, error) {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	earnings, err := l.earnings.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	earnings.AdminHold = hold
	earnings.AdminHoldReason = reason
	if !hold {
		earnings.AdminHoldReason = ""
	}
	status, readyDate := DeriveSettlementStatus(l.now(), earnings.EventEndDate, l.holdDays, earnings.AdminHold)
	earnings.SettlementStatus = status
	earnings.SettlementReadyDate = readyDate
	if err := l.earnings.Save(ctx, earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}
