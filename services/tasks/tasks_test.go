package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"pawcare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReminderTask(t *testing.T) {
	fireAt := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	payload := models.ReminderPayload{
		AppointmentID: "appt-1",
		UserID:        "user-1",
		ProviderName:  "Dr. Mwangi",
		Date:          "2026-09-07",
		StartTime:     "9:00 AM",
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	require.NoError(t, err)
	assert.Equal(t, TypeSendReminder, task.Type())
	assert.Len(t, opts, 1)

	var got models.ReminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &got))
	assert.Equal(t, payload, got)
}

func TestNewExpirePendingTask(t *testing.T) {
	task, opts, err := NewExpirePendingTask(models.ExpirePendingPayload{AppointmentID: "appt-1"}, time.Now().Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, TypeExpirePending, task.Type())
	assert.Len(t, opts, 1)

	var got models.ExpirePendingPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &got))
	assert.Equal(t, "appt-1", got.AppointmentID)
}
