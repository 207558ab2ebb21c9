package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jlouissaint/tikepam_backend/models"
)

// ProfileRepository persists payout profiles, legacy unified payout records,
// verification documents, and the organizer records this service reads.
type ProfileRepository struct {
	profiles   *mongo.Collection
	legacy     *mongo.Collection
	documents  *mongo.Collection
	organizers *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		profiles:   db.Collection("payout_profiles"),
		legacy:     db.Collection("legacy_payout_records"),
		documents:  db.Collection("verification_documents"),
		organizers: db.Collection("organizers"),
	}
}

func (r *ProfileRepository) GetByRail(ctx context.Context, organizerID primitive.ObjectID, rail string) (*models.PayoutProfile, error) {
	var profile models.PayoutProfile
	err := r.profiles.FindOne(ctx, bson.M{"organizerId": organizerID, "rail": rail}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Resource: "payout profile"}
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetLegacy(ctx context.Context, organizerID primitive.ObjectID) (*models.LegacyPayoutRecord, error) {
	var record models.LegacyPayoutRecord
	err := r.legacy.FindOne(ctx, bson.M{"organizerId": organizerID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Resource: "legacy payout record"}
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *models.PayoutProfile) error {
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"organizerId": profile.OrganizerID, "rail": profile.Rail}
	_, err := r.profiles.ReplaceOne(ctx, filter, profile, opts)
	return err
}

func (r *ProfileRepository) DocumentsByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.VerificationDocument, error) {
	cursor, err := r.documents.Find(ctx, bson.M{"organizerId": organizerID})
	if err != nil {
		return nil, err
	}
	var docs []models.VerificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *ProfileRepository) GetOrganizer(ctx context.Context, organizerID primitive.ObjectID) (*models.Organizer, error) {
	var organizer models.Organizer
	err := r.organizers.FindOne(ctx, bson.M{"_id": organizerID}).Decode(&organizer)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Resource: "organizer"}
	}
	if err != nil {
		return nil, err
	}
	return &organizer, nil
}
