package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jlouissaint/tikepam_backend/models"
)

// TicketRepository persists ingested tickets.
type TicketRepository struct {
	collection *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
	}
}

// Upsert writes a ticket keyed on its issuance-service ID. A redelivered
// confirmation replaces the existing row instead of inserting a duplicate.
func (r *TicketRepository) Upsert(ctx context.Context, ticket *models.Ticket) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ticket.ID}, ticket, opts)
	return err
}

// CountedByEvent returns the tickets that feed the earnings ledger: valid and
// confirmed only, refunded and pending excluded.
func (r *TicketRepository) CountedByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Ticket, error) {
	filter := bson.M{
		"eventId": eventID,
		"status":  bson.M{"$in": []string{models.TicketValid, models.TicketConfirmed}},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var tickets []models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// PageByEvent returns one page of all tickets for an event, ordered by
// purchase time descending with _id as a tiebreak so the order is stable
// across exports.
func (r *TicketRepository) PageByEvent(ctx context.Context, eventID primitive.ObjectID, page, limit int) ([]models.Ticket, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "purchasedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page * limit)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}
	var tickets []models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
