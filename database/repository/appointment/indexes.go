// FILE: database/repository/appointment/indexes.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"pawcare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the appointments collection.
// The partial unique index is what makes the booked-slot claim atomic: two
// confirmations racing for the same provider/date/slot cannot both reach
// status "booked".
func (r *mongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "checkoutSessionId", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("checkout_session_idx"),
		},
		// Primary resolver query pattern.
		{
			Keys: bson.D{
				{Key: "providerKind", Value: 1},
				{Key: "providerId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("provider_date_status_idx"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("user_date_idx"),
		},
		// At most one booked appointment per provider/date/slot.
		{
			Keys: bson.D{
				{Key: "providerKind", Value: 1},
				{Key: "providerId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "slot.startTime", Value: 1},
				{Key: "slot.endTime", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_booked_slot").
				SetPartialFilterExpression(bson.M{"status": models.AppointmentBooked}),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
