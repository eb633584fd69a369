package scheduling

import (
	"context"
	"testing"

	"pawcare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	vetActor   = models.Actor{ID: "vet-1", Role: "vet"}
	userActor  = models.Actor{ID: "user-1", Role: models.RoleUser}
	adminActor = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

type lifecycleFixture struct {
	svc      *DefaultLifecycleService
	appts    *fakeAppointmentRepo
	notifier *fakeNotifier
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		appts:    newFakeAppointmentRepo(),
		notifier: &fakeNotifier{},
	}
	f.svc = &DefaultLifecycleService{
		Appointments: f.appts,
		Providers:    newFakeProviderRepo(testVet()),
		Notifier:     f.notifier,
	}
	return f
}

func (f *lifecycleFixture) seed(t *testing.T, id, status, paymentStatus, consultationType string) {
	t.Helper()
	require.NoError(t, f.appts.Insert(context.Background(), &models.Appointment{
		ID:               id,
		ProviderKind:     models.ProviderVet,
		ProviderID:       "vet-1",
		UserID:           "user-1",
		Date:             mondayDate,
		Slot:             models.Slot{StartTime: "9:00 AM", EndTime: "9:30 AM", Status: models.SlotStatusBooked},
		Fee:              45,
		ConsultationType: consultationType,
		Status:           status,
		PaymentStatus:    paymentStatus,
	}))
}

func TestClinicLifecycleStartThenComplete(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "a1", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	ctx := context.Background()

	appt, err := f.svc.Start(ctx, vetActor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentInProgress, appt.Status)
	require.NotNil(t, appt.StartedAt)

	appt, err = f.svc.Complete(ctx, vetActor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, appt.Status)
	require.NotNil(t, appt.CompletedAt)

	// Clinic flow emits no lifecycle notifications.
	assert.Empty(t, f.notifier.emitted)
}

func TestHomeLifecycleCheckInThenCheckOut(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "a1", models.AppointmentBooked, models.PaymentPaid, models.ConsultationHome)
	ctx := context.Background()

	appt, err := f.svc.CheckIn(ctx, vetActor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentInProgress, appt.Status)

	appt, err = f.svc.CheckOut(ctx, vetActor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, appt.Status)

	// Arrival and completion each notify the pet owner.
	require.Len(t, f.notifier.emitted, 2)
	assert.Contains(t, f.notifier.emitted[0].Message, "checked in")
	assert.Contains(t, f.notifier.emitted[1].Message, "completed")
}

func TestTransitionVerbMatchesConsultationType(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "home", models.AppointmentBooked, models.PaymentPaid, models.ConsultationHome)
	f.seed(t, "clinic", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	ctx := context.Background()

	var ve *ValidationError
	_, err := f.svc.Start(ctx, vetActor, "home")
	require.ErrorAs(t, err, &ve)
	_, err = f.svc.CheckIn(ctx, vetActor, "clinic")
	require.ErrorAs(t, err, &ve)
	_, err = f.svc.CheckOut(ctx, vetActor, "clinic")
	require.ErrorAs(t, err, &ve)
	_, err = f.svc.Complete(ctx, vetActor, "home")
	require.ErrorAs(t, err, &ve)
}

func TestTransitionGuardsRejectWrongStatus(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "a1", models.AppointmentPending, models.PaymentPending, models.ConsultationInClinic)
	ctx := context.Background()

	var conflict *ConflictError
	_, err := f.svc.Start(ctx, vetActor, "a1")
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Error(), models.AppointmentPending)
	assert.Contains(t, conflict.Error(), models.AppointmentBooked)

	// Complete requires in-progress, not booked.
	f.seed(t, "a2", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	_, err = f.svc.Complete(ctx, vetActor, "a2")
	require.ErrorAs(t, err, &conflict)
}

func TestTransitionAuthorization(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "a1", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	ctx := context.Background()

	var forbidden *ForbiddenError
	_, err := f.svc.Start(ctx, models.Actor{ID: "vet-2", Role: "vet"}, "a1")
	require.ErrorAs(t, err, &forbidden, "another provider")

	_, err = f.svc.Start(ctx, models.Actor{ID: "vet-1", Role: "groomer"}, "a1")
	require.ErrorAs(t, err, &forbidden, "same id, wrong kind")

	_, err = f.svc.Start(ctx, userActor, "a1")
	require.ErrorAs(t, err, &forbidden, "users cannot drive provider transitions")

	_, err = f.svc.Cancel(ctx, models.Actor{ID: "user-2", Role: models.RoleUser}, "a1")
	require.ErrorAs(t, err, &forbidden, "another user cannot cancel")
}

func TestCancelRefundsAndReleasesSlot(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "a1", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	ctx := context.Background()

	appt, err := f.svc.Cancel(ctx, userActor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, appt.Status)
	assert.Equal(t, models.PaymentRefunded, appt.PaymentStatus)
	assert.Equal(t, models.SlotStatusCancelled, appt.Slot.Status)

	require.Len(t, f.notifier.emitted, 1)
	assert.Contains(t, f.notifier.emitted[0].Message, "cancelled")

	// The freed window is bookable again.
	resolver := newTestResolver(f.appts, mondayOffering())
	out, err := resolver.Resolve(ctx, models.ProviderVet, "vet-1", mondayDate, "")
	require.NoError(t, err)
	assert.Len(t, out.Services[0].Availability[0].Slots, 2)
}

func TestCancelByProvider(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "a1", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)

	appt, err := f.svc.Cancel(context.Background(), vetActor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, appt.Status)
	assert.Equal(t, models.PaymentRefunded, appt.PaymentStatus)
}

func TestCancelOnlyFromPendingOrBooked(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "done", models.AppointmentCompleted, models.PaymentPaid, models.ConsultationInClinic)
	f.seed(t, "live", models.AppointmentInProgress, models.PaymentPaid, models.ConsultationInClinic)

	var conflict *ConflictError
	_, err := f.svc.Cancel(context.Background(), userActor, "done")
	require.ErrorAs(t, err, &conflict)
	_, err = f.svc.Cancel(context.Background(), userActor, "live")
	require.ErrorAs(t, err, &conflict)
}

func TestGetAuthorization(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "a1", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	ctx := context.Background()

	for _, actor := range []models.Actor{userActor, vetActor, adminActor} {
		appt, err := f.svc.Get(ctx, actor, "a1")
		require.NoError(t, err)
		assert.Equal(t, "a1", appt.ID)
	}

	var forbidden *ForbiddenError
	_, err := f.svc.Get(ctx, models.Actor{ID: "user-2", Role: models.RoleUser}, "a1")
	require.ErrorAs(t, err, &forbidden)

	var nf *NotFoundError
	_, err = f.svc.Get(ctx, adminActor, "missing")
	require.ErrorAs(t, err, &nf)
}

func TestListingsShowPaidOnly(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "paid", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	f.seed(t, "unpaid", models.AppointmentPending, models.PaymentPending, models.ConsultationInClinic)
	f.seed(t, "cancelled", models.AppointmentCancelled, models.PaymentRefunded, models.ConsultationInClinic)
	ctx := context.Background()

	views, err := f.svc.ListForUser(ctx, userActor)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "paid", views[0].ID)
	assert.Equal(t, "Dr. Mwangi", views[0].ProviderName)

	views, err = f.svc.ListForProvider(ctx, vetActor)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "paid", views[0].ID)

	// Admins see everything, pending and cancelled included.
	views, err = f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 3)

	var forbidden *ForbiddenError
	_, err = f.svc.ListForProvider(ctx, userActor)
	require.ErrorAs(t, err, &forbidden)
}

func TestExpirePendingReapsOnlyPending(t *testing.T) {
	f := newLifecycleFixture()
	f.seed(t, "stale", models.AppointmentPending, models.PaymentPending, models.ConsultationInClinic)
	f.seed(t, "paidup", models.AppointmentBooked, models.PaymentPaid, models.ConsultationInClinic)
	ctx := context.Background()

	require.NoError(t, f.svc.ExpirePending(ctx, "stale"))
	appt, _ := f.appts.FindByID(ctx, "stale")
	assert.Equal(t, models.AppointmentCancelled, appt.Status)
	assert.Equal(t, models.PaymentFailed, appt.PaymentStatus)

	// Confirmed appointments are untouched; the reap is a silent no-op.
	require.NoError(t, f.svc.ExpirePending(ctx, "paidup"))
	appt, _ = f.appts.FindByID(ctx, "paidup")
	assert.Equal(t, models.AppointmentBooked, appt.Status)
	assert.Equal(t, models.PaymentPaid, appt.PaymentStatus)

	require.NoError(t, f.svc.ExpirePending(ctx, "missing"))
}
