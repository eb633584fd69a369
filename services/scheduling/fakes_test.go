package scheduling

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appointmentRepo "pawcare/database/repository/appointment"
	"pawcare/models"
)

// fakeAppointmentRepo is an in-memory AppointmentRepository that mirrors the
// conditional-write semantics of the Mongo implementation, including the
// partial unique index on booked slots.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.Appointment
	order []string

	// dropAfterClaim deletes the document right after a successful claim,
	// simulating a record vanishing between the claim and the re-read.
	dropAfterClaim bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: map[string]*models.Appointment{}}
}

func (r *fakeAppointmentRepo) Insert(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *appt
	r.byID[appt.ID] = &cp
	r.order = append(r.order, appt.ID)
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeAppointmentRepo) FindByCheckoutSession(_ context.Context, sessionID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.byID {
		if appt.CheckoutSessionID == sessionID {
			cp := *appt
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) SetCheckoutSession(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.byID[id]
	if !ok {
		return appointmentRepo.ErrNoMatch
	}
	appt.CheckoutSessionID = sessionID
	return nil
}

func (r *fakeAppointmentRepo) ActiveSlots(_ context.Context, kind models.ProviderKind, providerID, date string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, appt := range r.byID {
		if appt.ProviderKind == kind && appt.ProviderID == providerID && appt.Date == date &&
			appt.Status != models.AppointmentCancelled {
			out = append(out, appt.Slot)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ClaimBooked(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.byID[id]
	if !ok || appt.Status != models.AppointmentPending {
		return appointmentRepo.ErrNoMatch
	}
	for _, other := range r.byID {
		if other.ID == id {
			continue
		}
		if other.ProviderKind == appt.ProviderKind && other.ProviderID == appt.ProviderID &&
			other.Date == appt.Date && other.Slot.SameWindow(appt.Slot) &&
			other.Status == models.AppointmentBooked {
			return appointmentRepo.ErrSlotTaken
		}
	}
	appt.Status = models.AppointmentBooked
	appt.PaymentStatus = models.PaymentPaid
	appt.Slot.Status = models.SlotStatusBooked
	appt.UpdatedAt = time.Now().UTC()
	if r.dropAfterClaim {
		delete(r.byID, id)
	}
	return nil
}

func (r *fakeAppointmentRepo) ApplyTransition(_ context.Context, id string, fromStatuses []string, change appointmentRepo.TransitionChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.byID[id]
	if !ok {
		return appointmentRepo.ErrNoMatch
	}
	matched := false
	for _, st := range fromStatuses {
		if appt.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return appointmentRepo.ErrNoMatch
	}
	if change.Status != "" {
		appt.Status = change.Status
	}
	if change.PaymentStatus != "" {
		appt.PaymentStatus = change.PaymentStatus
	}
	if change.SlotStatus != "" {
		appt.Slot.Status = change.SlotStatus
	}
	if change.StartedAt != nil {
		appt.StartedAt = change.StartedAt
	}
	if change.CompletedAt != nil {
		appt.CompletedAt = change.CompletedAt
	}
	appt.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeAppointmentRepo) FindByUser(_ context.Context, userID string, statuses []string, paidOnly bool) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool { return a.UserID == userID }, statuses, paidOnly), nil
}

func (r *fakeAppointmentRepo) FindByProvider(_ context.Context, kind models.ProviderKind, providerID string, statuses []string, paidOnly bool) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return a.ProviderKind == kind && a.ProviderID == providerID
	}, statuses, paidOnly), nil
}

func (r *fakeAppointmentRepo) FindAll(_ context.Context) ([]models.Appointment, error) {
	return r.filter(func(*models.Appointment) bool { return true }, nil, false), nil
}

func (r *fakeAppointmentRepo) EnsureIndexes() error { return nil }

func (r *fakeAppointmentRepo) filter(pred func(*models.Appointment) bool, statuses []string, paidOnly bool) []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, id := range r.order {
		appt := r.byID[id]
		if !pred(appt) {
			continue
		}
		if paidOnly && appt.PaymentStatus != models.PaymentPaid {
			continue
		}
		if len(statuses) > 0 {
			found := false
			for _, st := range statuses {
				if appt.Status == st {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *appt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type fakeProviderRepo struct {
	providers map[string]*models.Provider
}

func newFakeProviderRepo(providers ...*models.Provider) *fakeProviderRepo {
	r := &fakeProviderRepo{providers: map[string]*models.Provider{}}
	for _, p := range providers {
		r.providers[string(p.Kind)+":"+p.ID] = p
	}
	return r
}

func (r *fakeProviderRepo) Insert(_ context.Context, p *models.Provider) error {
	r.providers[string(p.Kind)+":"+p.ID] = p
	return nil
}

func (r *fakeProviderRepo) FindByID(_ context.Context, kind models.ProviderKind, id string) (*models.Provider, error) {
	p := r.providers[string(kind)+":"+id]
	return p, nil
}

func (r *fakeProviderRepo) EnsureIndexes() error { return nil }

type fakeServiceRepo struct {
	offerings map[string]*models.ServiceOffering
	marks     []string // weekday + " " + startTime per MarkSlotBooked call
}

func newFakeServiceRepo(offerings ...*models.ServiceOffering) *fakeServiceRepo {
	r := &fakeServiceRepo{offerings: map[string]*models.ServiceOffering{}}
	for _, o := range offerings {
		r.offerings[o.ID] = o
	}
	return r
}

func (r *fakeServiceRepo) Upsert(_ context.Context, svc *models.ServiceOffering) error {
	cp := *svc
	r.offerings[svc.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) FindByID(_ context.Context, id string) (*models.ServiceOffering, error) {
	svc, ok := r.offerings[id]
	if !ok {
		return nil, nil
	}
	cp := *svc
	return &cp, nil
}

func (r *fakeServiceRepo) FindByProvider(_ context.Context, kind models.ProviderKind, providerID string) ([]models.ServiceOffering, error) {
	var out []models.ServiceOffering
	var ids []string
	for id := range r.offerings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		svc := r.offerings[id]
		if svc.ProviderKind == kind && svc.ProviderID == providerID {
			out = append(out, *svc)
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) MarkSlotBooked(_ context.Context, _ models.ProviderKind, _, weekday, startTime string) error {
	r.marks = append(r.marks, weekday+" "+startTime)
	return nil
}

func (r *fakeServiceRepo) EnsureIndexes() error { return nil }

type fakeGateway struct {
	sessions   map[string]*CheckoutSession
	created    []CheckoutParams
	failCreate error
	nextID     int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*CheckoutSession{}}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if g.failCreate != nil {
		return nil, g.failCreate
	}
	g.created = append(g.created, params)
	g.nextID++
	sess := &CheckoutSession{
		ID:       "cs_test_" + string(rune('a'+g.nextID-1)),
		URL:      "https://checkout.example.com/" + params.Metadata[MetaAppointmentID],
		Metadata: params.Metadata,
	}
	g.sessions[sess.ID] = sess
	return sess, nil
}

func (g *fakeGateway) RetrieveSession(_ context.Context, sessionID string) (*CheckoutSession, error) {
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	return sess, nil
}

type emittedNotification struct {
	UserID    string
	Type      string
	Message   string
	RelatedID string
}

type fakeNotifier struct {
	emitted []emittedNotification
}

func (n *fakeNotifier) Emit(_ context.Context, userID, ntype, message, relatedID string) {
	n.emitted = append(n.emitted, emittedNotification{userID, ntype, message, relatedID})
}

func (n *fakeNotifier) ListForUser(_ context.Context, userID string) ([]models.Notification, error) {
	return nil, nil
}

type scheduledReminder struct {
	Payload models.ReminderPayload
	FireAt  time.Time
}

type scheduledExpiry struct {
	Payload models.ExpirePendingPayload
	FireAt  time.Time
}

type fakeTaskScheduler struct {
	reminders []scheduledReminder
	expiries  []scheduledExpiry
}

func (s *fakeTaskScheduler) ScheduleReminder(_ context.Context, p models.ReminderPayload, fireAt time.Time) error {
	s.reminders = append(s.reminders, scheduledReminder{p, fireAt})
	return nil
}

func (s *fakeTaskScheduler) ScheduleExpirePending(_ context.Context, p models.ExpirePendingPayload, fireAt time.Time) error {
	s.expiries = append(s.expiries, scheduledExpiry{p, fireAt})
	return nil
}
