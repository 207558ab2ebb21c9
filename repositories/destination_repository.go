package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jlouissaint/tikepam_backend/models"
)

// DestinationRepository persists bank payout destinations. Verification is
// looked up from the shared verification_documents collection; a destination
// with no document at all is reported as absent rather than pending.
type DestinationRepository struct {
	collection *mongo.Collection
	documents  *mongo.Collection
}

func NewDestinationRepository(db *mongo.Database) *DestinationRepository {
	return &DestinationRepository{
		collection: db.Collection("payout_destinations"),
		documents:  db.Collection("verification_documents"),
	}
}

func (r *DestinationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BankDestination, error) {
	var dest models.BankDestination
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&dest)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Resource: "bank destination"}
	}
	if err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) ListByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.BankDestination, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isPrimary", Value: -1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"organizerId": organizerID}, opts)
	if err != nil {
		return nil, err
	}
	var dests []models.BankDestination
	if err := cursor.All(ctx, &dests); err != nil {
		return nil, err
	}
	return dests, nil
}

func (r *DestinationRepository) Insert(ctx context.Context, dest *models.BankDestination) error {
	if dest.ID.IsZero() {
		dest.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, dest)
	return err
}

func (r *DestinationRepository) Save(ctx context.Context, dest *models.BankDestination) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": dest.ID}, dest)
	return err
}

func (r *DestinationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ClearPrimary demotes every destination for the organizer so a new primary
// can be set, keeping exactly one primary at all times.
func (r *DestinationRepository) ClearPrimary(ctx context.Context, organizerID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"organizerId": organizerID, "isPrimary": true},
		bson.M{"$set": bson.M{"isPrimary": false}})
	return err
}

// VerificationStatus resolves the destination's verification tri-state from
// its most recent verification document.
func (r *DestinationRepository) VerificationStatus(ctx context.Context, destinationID primitive.ObjectID) (string, error) {
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})
	var doc models.VerificationDocument
	err := r.documents.FindOne(ctx, bson.M{"destinationId": destinationID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.VerificationAbsent, nil
	}
	if err != nil {
		return "", err
	}
	return doc.Status, nil
}
