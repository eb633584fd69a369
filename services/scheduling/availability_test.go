package scheduling

import (
	"context"
	"testing"

	"pawcare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseOffering() *models.ServiceOffering {
	return &models.ServiceOffering{
		Services:       []string{"Full Groom"},
		Price:          60,
		DeliveryMethod: models.DeliveryInClinic,
		Availability: []models.DayBlock{
			{Day: "Saturday", Slots: []models.Slot{{StartTime: "10:00 AM", EndTime: "11:00 AM"}}},
		},
	}
}

func TestUpsertOfferingAssignsOwnership(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := &DefaultAvailabilityService{Services: repo}
	groomer := models.Actor{ID: "groomer-1", Role: "groomer"}

	saved, err := svc.UpsertOffering(context.Background(), groomer, baseOffering())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "groomer-1", saved.ProviderID)
	assert.Equal(t, models.ProviderGroomer, saved.ProviderKind)
	assert.True(t, saved.IsActive)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestUpsertOfferingRejectsNonProviders(t *testing.T) {
	svc := &DefaultAvailabilityService{Services: newFakeServiceRepo()}

	var forbidden *ForbiddenError
	_, err := svc.UpsertOffering(context.Background(), models.Actor{ID: "user-1", Role: models.RoleUser}, baseOffering())
	require.ErrorAs(t, err, &forbidden)
}

func TestUpsertOfferingOwnershipOnUpdate(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := &DefaultAvailabilityService{Services: repo}
	ctx := context.Background()

	saved, err := svc.UpsertOffering(ctx, models.Actor{ID: "groomer-1", Role: "groomer"}, baseOffering())
	require.NoError(t, err)

	// Another provider cannot overwrite it.
	stolen := baseOffering()
	stolen.ID = saved.ID
	var forbidden *ForbiddenError
	_, err = svc.UpsertOffering(ctx, models.Actor{ID: "groomer-2", Role: "groomer"}, stolen)
	require.ErrorAs(t, err, &forbidden)

	// The owner can, and the creation timestamp survives.
	update := baseOffering()
	update.ID = saved.ID
	update.Price = 75
	updated, err := svc.UpsertOffering(ctx, models.Actor{ID: "groomer-1", Role: "groomer"}, update)
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 75.0, updated.Price)
}

func TestUpsertOfferingValidation(t *testing.T) {
	svc := &DefaultAvailabilityService{Services: newFakeServiceRepo()}
	groomer := models.Actor{ID: "groomer-1", Role: "groomer"}
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.ServiceOffering)
	}{
		{"no services", func(o *models.ServiceOffering) { o.Services = nil }},
		{"zero price", func(o *models.ServiceOffering) { o.Price = 0 }},
		{"no delivery method", func(o *models.ServiceOffering) { o.DeliveryMethod = "" }},
		{"video not offered by groomers", func(o *models.ServiceOffering) { o.DeliveryMethod = models.DeliveryVideo }},
		{"bad weekday", func(o *models.ServiceOffering) { o.Availability[0].Day = "Funday" }},
		{"bad slot time", func(o *models.ServiceOffering) { o.Availability[0].Slots[0].StartTime = "25:00" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offering := baseOffering()
			tc.mutate(offering)
			var ve *ValidationError
			_, err := svc.UpsertOffering(ctx, groomer, offering)
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestUpsertHomeVisitCoverage(t *testing.T) {
	svc := &DefaultAvailabilityService{Services: newFakeServiceRepo()}
	groomer := models.Actor{ID: "groomer-1", Role: "groomer"}
	ctx := context.Background()

	homeVisit := func() *models.ServiceOffering {
		o := baseOffering()
		o.DeliveryMethod = models.DeliveryHomeVisit
		o.Address = "12 Riverside Dr"
		o.City = "Nairobi"
		return o
	}

	t.Run("radius coverage", func(t *testing.T) {
		o := homeVisit()
		o.CoverageType = models.CoverageRadius
		o.ServiceRadius = 10
		o.CommuteBuffer = 20
		_, err := svc.UpsertOffering(ctx, groomer, o)
		require.NoError(t, err)
	})

	t.Run("area coverage", func(t *testing.T) {
		o := homeVisit()
		o.CoverageType = models.CoverageAreas
		o.Areas = []string{"Westlands", "Kilimani"}
		_, err := svc.UpsertOffering(ctx, groomer, o)
		require.NoError(t, err)
	})

	var ve *ValidationError

	t.Run("missing address", func(t *testing.T) {
		o := homeVisit()
		o.Address = ""
		o.CoverageType = models.CoverageRadius
		o.ServiceRadius = 10
		_, err := svc.UpsertOffering(ctx, groomer, o)
		require.ErrorAs(t, err, &ve)
	})

	t.Run("no coverage type", func(t *testing.T) {
		_, err := svc.UpsertOffering(ctx, groomer, homeVisit())
		require.ErrorAs(t, err, &ve)
	})

	t.Run("radius without distance", func(t *testing.T) {
		o := homeVisit()
		o.CoverageType = models.CoverageRadius
		_, err := svc.UpsertOffering(ctx, groomer, o)
		require.ErrorAs(t, err, &ve)
	})

	t.Run("radius mixed with areas", func(t *testing.T) {
		o := homeVisit()
		o.CoverageType = models.CoverageRadius
		o.ServiceRadius = 10
		o.Areas = []string{"Westlands"}
		_, err := svc.UpsertOffering(ctx, groomer, o)
		require.ErrorAs(t, err, &ve)
	})

	t.Run("areas without list", func(t *testing.T) {
		o := homeVisit()
		o.CoverageType = models.CoverageAreas
		_, err := svc.UpsertOffering(ctx, groomer, o)
		require.ErrorAs(t, err, &ve)
	})
}

func TestListOfferings(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := &DefaultAvailabilityService{Services: repo}
	ctx := context.Background()

	_, err := svc.UpsertOffering(ctx, models.Actor{ID: "groomer-1", Role: "groomer"}, baseOffering())
	require.NoError(t, err)

	out, err := svc.ListOfferings(ctx, models.Actor{ID: "groomer-1", Role: "groomer"})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = svc.ListOfferings(ctx, models.Actor{ID: "groomer-2", Role: "groomer"})
	require.NoError(t, err)
	assert.Empty(t, out)

	var forbidden *ForbiddenError
	_, err = svc.ListOfferings(ctx, models.Actor{ID: "user-1", Role: models.RoleUser})
	require.ErrorAs(t, err, &forbidden)
}
