package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jlouissaint/tikepam_backend/models"
)

// WithdrawalRepository persists withdrawal requests. Status updates are
// filtered on the expected prior status so each terminal outcome is reached
// at most once; the amount is never updated after creation.
type WithdrawalRepository struct {
	collection *mongo.Collection
}

func NewWithdrawalRepository(db *mongo.Database) *WithdrawalRepository {
	return &WithdrawalRepository{
		collection: db.Collection("withdrawal_requests"),
	}
}

func (r *WithdrawalRepository) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, req)
	return err
}

func (r *WithdrawalRepository) MarkProcessing(ctx context.Context, id primitive.ObjectID) error {
	return r.transition(ctx, id,
		bson.M{"status": models.WithdrawalPending},
		bson.M{"status": models.WithdrawalProcessing})
}

func (r *WithdrawalRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, feeCents, payoutCents int64, processedAt time.Time) error {
	update := bson.M{
		"status":      models.WithdrawalCompleted,
		"processedAt": processedAt,
	}
	if feeCents > 0 {
		update["feeCents"] = feeCents
		update["payoutAmountCents"] = payoutCents
	}
	return r.transition(ctx, id,
		bson.M{"status": bson.M{"$in": []string{models.WithdrawalPending, models.WithdrawalProcessing}}},
		update)
}

func (r *WithdrawalRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, processedAt time.Time) error {
	return r.transition(ctx, id,
		bson.M{"status": bson.M{"$in": []string{models.WithdrawalPending, models.WithdrawalProcessing}}},
		bson.M{
			"status":        models.WithdrawalFailed,
			"failureReason": reason,
			"processedAt":   processedAt,
		})
}

func (r *WithdrawalRepository) transition(ctx context.Context, id primitive.ObjectID, statusFilter, set bson.M) error {
	filter := bson.M{"_id": id}
	for k, v := range statusFilter {
		filter[k] = v
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("withdrawal %s is not in a state that allows this transition", id.Hex())
	}
	return nil
}

func (r *WithdrawalRepository) ListByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.WithdrawalRequest, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"organizerId": organizerID}, opts)
	if err != nil {
		return nil, err
	}
	var requests []models.WithdrawalRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}
