package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
)

// WithdrawalStore persists withdrawal requests.
type WithdrawalStore interface {
	Create(ctx context.Context, req *models.WithdrawalRequest) error
	MarkProcessing(ctx context.Context, id primitive.ObjectID) error
	MarkCompleted(ctx context.Context, id primitive.ObjectID, feeCents, payoutCents int64, processedAt time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, processedAt time.Time) error
	ListByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.WithdrawalRequest, error)
}

// WithdrawalProcessor validates withdrawal requests against the ledger and
// dispatches them to the selected rail.
type WithdrawalProcessor struct {
	ledger      *Ledger
	withdrawals WithdrawalStore
	registry    *DestinationRegistry
	resolver    *ProfileResolver
	moncash     MoncashRail
	now         func() time.Time
}

// NewWithdrawalProcessor wires the processor to its collaborators.
func NewWithdrawalProcessor(ledger *Ledger, withdrawals WithdrawalStore, registry *DestinationRegistry, resolver *ProfileResolver, moncash MoncashRail) *WithdrawalProcessor {
	return &WithdrawalProcessor{
		ledger:      ledger,
		withdrawals: withdrawals,
		registry:    registry,
		resolver:    resolver,
		moncash:     moncash,
		now:         time.Now,
	}
}

// validate runs the shared manual-rail checks in order: rail exclusivity,
// minimum amount, ownership. Settlement readiness and balance are checked
// under the ledger lock at deduction time.
func (p *WithdrawalProcessor) validate(ctx context.Context, organizerID, eventID primitive.ObjectID, amount int64) (*models.EventEarnings, error) {
	earnings, err := p.ledger.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if RailForCountry(earnings.EventCountry) == models.RailCardGatewayConnect {
		return nil, &models.ValidationError{Msg: "manual withdrawals are not available on the cardGatewayConnect rail"}
	}
	if amount < models.MinimumWithdrawalCents {
		return nil, &models.ValidationError{Msg: "amount is below the minimum payout threshold"}
	}
	if earnings.OrganizerID != organizerID {
		return nil, &models.AuthorizationError{Msg: "event does not belong to this organizer"}
	}
	return earnings, nil
}

// WithdrawBank executes a manual bank withdrawal. The deduction happens
// immediately; completed means handed off for manual execution.
func (p *WithdrawalProcessor) WithdrawBank(ctx context.Context, organizerID, eventID primitive.ObjectID, req *models.BankWithdrawalRequest) (*models.WithdrawalResult, error) {
	earnings, err := p.validate(ctx, organizerID, eventID, req.Amount)
	if err != nil {
		return nil, err
	}

	var destinationID *primitive.ObjectID
	var snapshot *models.BankDetailsSnapshot
	switch {
	case req.BankDestinationID != "":
		id, err := primitive.ObjectIDFromHex(req.BankDestinationID)
		if err != nil {
			return nil, &models.ValidationError{Msg: "invalid bank destination ID"}
		}
		dest, err := p.registry.GetOwned(ctx, organizerID, id)
		if err != nil {
			return nil, err
		}
		destinationID = &dest.ID
	case req.BankDetails != nil:
		if req.SaveDestination {
			// Saving goes through the registry with its OTP step-up gate.
			dest, err := p.registry.Add(ctx, organizerID, req.BankDetails)
			if err != nil {
				return nil, err
			}
			destinationID = &dest.ID
		} else {
			// One-off details are kept on the request itself so manual
			// execution knows where to send the funds.
			snapshot, err = p.registry.Snapshot(req.BankDetails)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, &models.ValidationError{Msg: "either bankDestinationId or bankDetails is required"}
	}

	return p.executeManual(ctx, earnings, &models.WithdrawalRequest{
		OrganizerID:       organizerID,
		EventID:           eventID,
		Amount:            req.Amount,
		Currency:          earnings.Currency,
		Method:            models.MethodBank,
		BankDestinationID: destinationID,
		BankSnapshot:      snapshot,
	})
}

// WithdrawMoncash executes a MonCash withdrawal. When the platform prefunding
// pool is active, the organizer has opted in, and the event settles in HTG,
// the transfer is dispatched instantly for a fee; otherwise it is handed off
// for manual execution like a bank withdrawal.
func (p *WithdrawalProcessor) WithdrawMoncash(ctx context.Context, organizerID, eventID primitive.ObjectID, req *models.MoncashWithdrawalRequest) (*models.WithdrawalResult, error) {
	earnings, err := p.validate(ctx, organizerID, eventID, req.Amount)
	if err != nil {
		return nil, err
	}

	request := &models.WithdrawalRequest{
		OrganizerID:   organizerID,
		EventID:       eventID,
		Amount:        req.Amount,
		Currency:      earnings.Currency,
		Method:        models.MethodMoncash,
		MoncashNumber: req.MoncashNumber,
	}

	if p.instantEligible(ctx, organizerID, earnings) {
		return p.executeInstant(ctx, request)
	}
	return p.executeManual(ctx, earnings, request)
}

func (p *WithdrawalProcessor) instantEligible(ctx context.Context, organizerID primitive.ObjectID, earnings *models.EventEarnings) bool {
	if !p.moncash.PrefundingEnabled() || earnings.Currency != models.CurrencyHTG {
		return false
	}
	profile, err := p.resolver.Resolve(ctx, organizerID, earnings.EventCountry)
	if err != nil {
		log.Printf("instant eligibility: failed to resolve profile for %s: %v", organizerID.Hex(), err)
		return false
	}
	return profile.Haiti != nil && profile.Haiti.InstantOptIn
}

// executeManual deducts immediately and records the request as completed.
// No external call can fail on this path; a persistence failure after the
// deduction is reconciled by restoring the deducted amount.
func (p *WithdrawalProcessor) executeManual(ctx context.Context, earnings *models.EventEarnings, request *models.WithdrawalRequest) (*models.WithdrawalResult, error) {
	if _, err := p.ledger.Deduct(ctx, earnings.EventID, request.Amount); err != nil {
		return nil, err
	}

	now := p.now()
	request.Status = models.WithdrawalCompleted
	request.IdempotencyKey = uuid.New().String()
	request.CreatedAt = now
	request.ProcessedAt = &now
	if err := p.withdrawals.Create(ctx, request); err != nil {
		if restoreErr := p.ledger.Restore(ctx, earnings.EventID, request.Amount); restoreErr != nil {
			log.Printf("CRITICAL: withdrawal create failed and restore failed for event %s: %v", earnings.EventID.Hex(), restoreErr)
		}
		return nil, err
	}

	return &models.WithdrawalResult{WithdrawalID: request.ID.Hex()}, nil
}

// executeInstant dispatches an instant prefunded MonCash transfer. The
// reserved amount is only deducted after the transfer succeeds, and the
// ledger lock is never held across the external call. A failed transfer
// always leaves the request persisted as failed with the provider reason.
func (p *WithdrawalProcessor) executeInstant(ctx context.Context, request *models.WithdrawalRequest) (*models.WithdrawalResult, error) {
	fee := InstantFee(request.Amount)
	payout := request.Amount - fee

	if err := p.ledger.Reserve(ctx, request.EventID, request.Amount); err != nil {
		return nil, err
	}

	request.Status = models.WithdrawalPending
	request.Instant = true
	request.IdempotencyKey = uuid.New().String()
	request.CreatedAt = p.now()
	if err := p.withdrawals.Create(ctx, request); err != nil {
		p.ledger.ReleaseReservation(request.EventID, request.Amount)
		return nil, err
	}
	if err := p.withdrawals.MarkProcessing(ctx, request.ID); err != nil {
		p.ledger.ReleaseReservation(request.EventID, request.Amount)
		return nil, err
	}

	_, err := p.moncash.Transfer(ctx, request.MoncashNumber, payout, request.Currency, request.IdempotencyKey)
	if err != nil {
		p.ledger.ReleaseReservation(request.EventID, request.Amount)
		if markErr := p.withdrawals.MarkFailed(ctx, request.ID, err.Error(), p.now()); markErr != nil {
			log.Printf("CRITICAL: failed to mark withdrawal %s failed: %v", request.ID.Hex(), markErr)
		}
		return nil, &models.ExternalRailError{Provider: "moncash", Reason: err.Error()}
	}

	// Deduct the gross amount, not the net payout: the fee is platform revenue.
	if _, err := p.ledger.CommitReservation(ctx, request.EventID, request.Amount); err != nil {
		log.Printf("CRITICAL: instant transfer sent but deduction failed for withdrawal %s: %v", request.ID.Hex(), err)
		return nil, err
	}
	if err := p.withdrawals.MarkCompleted(ctx, request.ID, fee, payout, p.now()); err != nil {
		log.Printf("failed to mark withdrawal %s completed: %v", request.ID.Hex(), err)
	}

	return &models.WithdrawalResult{
		WithdrawalID:      request.ID.Hex(),
		Instant:           true,
		FeeCents:          fee,
		PayoutAmountCents: payout,
	}, nil
}

// History returns the organizer's withdrawal requests, newest first.
func (p *WithdrawalProcessor) History(ctx context.Context, organizerID primitive.ObjectID) ([]models.WithdrawalRequest, error) {
	return p.withdrawals.ListByOrganizer(ctx, organizerID)
}
