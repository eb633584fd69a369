package providerRepo

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

// ProviderRepository is the single polymorphic provider lookup over the
// kind-discriminated collection; it replaces per-kind model routing.
type ProviderRepository interface {
	Insert(ctx context.Context, p *models.Provider) error
	FindByID(ctx context.Context, kind models.ProviderKind, id string) (*models.Provider, error)
	EnsureIndexes() error
}

type mongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo returns a ProviderRepository backed by the global
// Mongo client.
func NewMongoProviderRepo() ProviderRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("providers")
	return &mongoProviderRepo{coll: coll}
}

func (r *mongoProviderRepo) Insert(ctx context.Context, p *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert provider: %w", err)
	}
	return nil
}

func (r *mongoProviderRepo) FindByID(ctx context.Context, kind models.ProviderKind, id string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Provider
	err := r.coll.FindOne(ctx, bson.M{"kind": kind, "id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider %s/%s: %w", kind, id, err)
	}
	return &p, nil
}

// EnsureIndexes creates the necessary indexes on the providers collection.
func (r *mongoProviderRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_kind_id"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}
	return nil
}
