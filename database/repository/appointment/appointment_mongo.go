package appointmentRepo

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

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo returns an AppointmentRepository backed by the
// global Mongo client.
func NewMongoAppointmentRepo() AppointmentRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("appointments")
	return &mongoAppointmentRepo{coll: coll}
}

func (r *mongoAppointmentRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"checkoutSessionId": sessionID}).Decode(&appt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment for session %s: %w", sessionID, err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"checkoutSessionId": sessionID, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set checkout session on appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

func (r *mongoAppointmentRepo) ActiveSlots(ctx context.Context, kind models.ProviderKind, providerID, date string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerKind": kind,
		"providerId":   providerID,
		"date":         date,
		"status":       bson.M{"$in": []string{models.AppointmentPending, models.AppointmentBooked, models.AppointmentInProgress, models.AppointmentCompleted}},
	}
	opts := options.Find().SetProjection(bson.M{"slot": 1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query taken slots: %w", err)
	}
	defer cur.Close(ctx)

	var taken []models.Slot
	for cur.Next(ctx) {
		var doc struct {
			Slot models.Slot `bson:"slot"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode taken slot: %w", err)
		}
		taken = append(taken, doc.Slot)
	}
	return taken, cur.Err()
}

// ClaimBooked relies on the partial unique index over
// {providerKind, providerId, date, slot.startTime, slot.endTime} where
// status == "booked": a concurrent claim for the same slot surfaces as a
// duplicate-key error rather than a second booked document.
func (r *mongoAppointmentRepo) ClaimBooked(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.AppointmentPending}
	update := bson.M{"$set": bson.M{
		"status":        models.AppointmentBooked,
		"paymentStatus": models.PaymentPaid,
		"slot.status":   models.SlotStatusBooked,
		"updatedAt":     time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if mongo.IsDuplicateKeyError(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("failed to claim appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

func (r *mongoAppointmentRepo) ApplyTransition(ctx context.Context, id string, fromStatuses []string, change TransitionChange) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if change.Status != "" {
		set["status"] = change.Status
	}
	if change.PaymentStatus != "" {
		set["paymentStatus"] = change.PaymentStatus
	}
	if change.SlotStatus != "" {
		set["slot.status"] = change.SlotStatus
	}
	if change.StartedAt != nil {
		set["startedAt"] = *change.StartedAt
	}
	if change.CompletedAt != nil {
		set["completedAt"] = *change.CompletedAt
	}

	filter := bson.M{"id": id, "status": bson.M{"$in": fromStatuses}}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to transition appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

func (r *mongoAppointmentRepo) FindByUser(ctx context.Context, userID string, statuses []string, paidOnly bool) ([]models.Appointment, error) {
	filter := bson.M{"userId": userID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	if paidOnly {
		filter["paymentStatus"] = models.PaymentPaid
	}
	return r.findSorted(ctx, filter, bson.D{{Key: "date", Value: 1}})
}

func (r *mongoAppointmentRepo) FindByProvider(ctx context.Context, kind models.ProviderKind, providerID string, statuses []string, paidOnly bool) ([]models.Appointment, error) {
	filter := bson.M{"providerKind": kind, "providerId": providerID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	if paidOnly {
		filter["paymentStatus"] = models.PaymentPaid
	}
	return r.findSorted(ctx, filter, bson.D{{Key: "date", Value: 1}, {Key: "slot.startTime", Value: 1}})
}

func (r *mongoAppointmentRepo) FindAll(ctx context.Context) ([]models.Appointment, error) {
	return r.findSorted(ctx, bson.M{}, bson.D{{Key: "date", Value: 1}})
}

func (r *mongoAppointmentRepo) findSorted(ctx context.Context, filter bson.M, sort bson.D) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cur.Close(ctx)

	var appts []models.Appointment
	if err := cur.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}
