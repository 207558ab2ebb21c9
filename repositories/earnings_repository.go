package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jlouissaint/tikepam_backend/models"
)

// EarningsRepository persists the per-event ledger aggregates.
type EarningsRepository struct {
	collection *mongo.Collection
}

func NewEarningsRepository(db *mongo.Database) *EarningsRepository {
	return &EarningsRepository{
		collection: db.Collection("event_earnings"),
	}
}

func (r *EarningsRepository) GetByEvent(ctx context.Context, eventID primitive.ObjectID) (*models.EventEarnings, error) {
	var earnings models.EventEarnings
	err := r.collection.FindOne(ctx, bson.M{"eventId": eventID}).Decode(&earnings)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Resource: "event earnings"}
	}
	if err != nil {
		return nil, err
	}
	return &earnings, nil
}

func (r *EarningsRepository) Save(ctx context.Context, earnings *models.EventEarnings) error {
	if earnings.ID.IsZero() {
		earnings.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"eventId": earnings.EventID}, earnings, opts)
	return err
}
