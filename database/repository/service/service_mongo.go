package serviceRepo

import (
	"context"
	"fmt"
	"time"

	"pawcare/database"
	"pawcare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoServiceRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRepo returns a ServiceRepository backed by the global Mongo
// client.
func NewMongoServiceRepo() ServiceRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("services")
	return &mongoServiceRepo{coll: coll}
}

func (r *mongoServiceRepo) Upsert(ctx context.Context, svc *models.ServiceOffering) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	svc.UpdatedAt = time.Now().UTC()
	filter := bson.M{"id": svc.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, svc, opts); err != nil {
		return fmt.Errorf("failed to upsert service offering %s: %w", svc.ID, err)
	}
	return nil
}

func (r *mongoServiceRepo) FindByID(ctx context.Context, id string) (*models.ServiceOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.ServiceOffering
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service offering %s: %w", id, err)
	}
	return &svc, nil
}

func (r *mongoServiceRepo) FindByProvider(ctx context.Context, kind models.ProviderKind, providerID string) ([]models.ServiceOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerKind": kind, "providerId": providerID, "isActive": true}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query service offerings: %w", err)
	}
	defer cur.Close(ctx)

	var svcs []models.ServiceOffering
	if err := cur.All(ctx, &svcs); err != nil {
		return nil, fmt.Errorf("failed to decode service offerings: %w", err)
	}
	return svcs, nil
}

func (r *mongoServiceRepo) MarkSlotBooked(ctx context.Context, kind models.ProviderKind, providerID, weekday, startTime string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerKind": kind, "providerId": providerID}
	update := bson.M{"$set": bson.M{
		"availability.$[dayElem].slots.$[slotElem].status": models.SlotStatusBooked,
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"dayElem.day": weekday},
			bson.M{"slotElem.startTime": startTime},
		},
	})

	if _, err := r.coll.UpdateMany(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to mark availability slot booked: %w", err)
	}
	return nil
}
