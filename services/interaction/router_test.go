package interaction

import (
	"context"
	"testing"
	"time"

	jobRepo "fieldbot/database/repository/job"
	"fieldbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeJobRepo struct {
	createErr error
	created   []*models.Job
	maxDaily  []int
}

func (f *fakeJobRepo) GetActiveForDate(ctx context.Context, orgID, date string) ([]models.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) CreateBooking(ctx context.Context, job *models.Job, maxDailyJobs int) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, job)
	f.maxDaily = append(f.maxDaily, maxDailyJobs)
	return nil
}

func (f *fakeJobRepo) CancelBooking(ctx context.Context, orgID, jobID string) error { return nil }

func (f *fakeJobRepo) EnsureIndexes(ctx context.Context) error { return nil }

func newTestRouter(jobs *fakeJobRepo) (*ButtonRouter, *MemoryStore) {
	store := NewMemoryStore(30*time.Minute, zap.NewNop())
	return NewButtonRouter(store, jobs, zap.NewNop()), store
}

func click(id string) ButtonClickContext {
	return ButtonClickContext{
		OrganizationID: "org1",
		ConversationID: "conv1",
		CustomerPhone:  "+525512345678",
		ButtonID:       id,
	}
}

func pendingSlots() models.PendingInteraction {
	return models.PendingInteraction{
		Type:           models.InteractionTimeSlotSelection,
		OrganizationID: "org1",
		CustomerPhone:  "+525512345678",
		Data: models.InteractionData{SlotSelection: &models.SlotSelectionData{
			Date:        "2026-09-07",
			ServiceType: "plomería",
			CustomerID:  "c1",
			Slots: []models.TimeSlot{
				{Start: "09:00", End: "10:00", AvailableTechnicians: 1, BestTechnician: &models.BestTechnician{ID: "t1", Name: "Juan"}},
				{Start: "10:00", End: "11:00", AvailableTechnicians: 2, BestTechnician: &models.BestTechnician{ID: "t2", Name: "Ana"}},
			},
			TechnicianCapacities: map[string]int{"t1": 3, "t2": 5},
		}},
	}
}

// A button click with no pending interaction resolves gracefully: no error,
// an expired-session reply.
func TestHandleExpiredSession(t *testing.T) {
	router, _ := newTestRouter(&fakeJobRepo{})

	result, err := router.Handle(context.Background(), click("slot_0"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Response, "sesión expiró")
	assert.Equal(t, models.ActionRespond, result.Action)
}

// A slot click against confirmation state (or vice versa) is stale, not an
// error: the stored state belongs to a different prompt.
func TestHandleTypeMismatchIsStale(t *testing.T) {
	router, store := newTestRouter(&fakeJobRepo{})
	require.NoError(t, store.Set(context.Background(), "conv1", pendingSlots()))

	result, err := router.Handle(context.Background(), click("confirm_yes"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Response, "sesión expiró")
}

func TestHandleUnknownButton(t *testing.T) {
	router, _ := newTestRouter(&fakeJobRepo{})

	result, err := router.Handle(context.Background(), click("mystery_button"))
	require.NoError(t, err)
	assert.False(t, result.Handled)
}

func TestHandleFAQStateless(t *testing.T) {
	router, _ := newTestRouter(&fakeJobRepo{})

	result, err := router.Handle(context.Background(), click("faq_precios"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Response, "costo")

	// Unknown FAQ ids still answer, offering a human.
	result, err = router.Handle(context.Background(), click("faq_garantias"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Response, "asesor")
}

// Selecting a slot advances the conversation to a confirmation prompt and
// registers the new pending interaction.
func TestHandleSlotSelectionAdvancesToConfirmation(t *testing.T) {
	router, store := newTestRouter(&fakeJobRepo{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingSlots()))

	result, err := router.Handle(ctx, click("slot_0"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, models.ActionWaitInput, result.Action)
	assert.Contains(t, result.Response, "¿Confirmas")
	assert.Contains(t, result.Response, "09:00")
	assert.Contains(t, result.Response, "Juan")

	pending, err := store.Consume(ctx, "conv1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, models.InteractionConfirmation, pending.Type)
	require.NotNil(t, pending.Data.Confirmation)
	booking := pending.Data.Confirmation.Booking
	assert.Equal(t, "2026-09-07", booking.Date)
	assert.Equal(t, "09:00", booking.StartTime)
	assert.Equal(t, "t1", booking.TechnicianID)
	assert.Equal(t, "c1", booking.CustomerID)
	assert.Equal(t, 3, booking.TechnicianMaxJobs, "configured capacity travels with the draft")
}

// The configured capacity chosen at slot selection reaches the write-time
// capacity check, so a technician with a low cap cannot be overbooked to
// the default.
func TestHandleSlotSelectionCommitUsesConfiguredCapacity(t *testing.T) {
	jobs := &fakeJobRepo{}
	router, store := newTestRouter(jobs)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingSlots()))

	result, err := router.Handle(ctx, click("slot_0"))
	require.NoError(t, err)
	require.True(t, result.Handled)

	result, err = router.Handle(ctx, click("confirm_yes"))
	require.NoError(t, err)
	assert.Equal(t, models.ActionCreateJob, result.Action)
	require.Len(t, jobs.maxDaily, 1)
	assert.Equal(t, 3, jobs.maxDaily[0])
}

// slot_N is a zero-based index into the stored slots: slot_1 books the
// second offered option, regardless of the 1-based numbering shown in chat.
func TestHandleSlotSelectionZeroBasedIndex(t *testing.T) {
	router, store := newTestRouter(&fakeJobRepo{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingSlots()))

	result, err := router.Handle(ctx, click("slot_1"))
	require.NoError(t, err)
	require.True(t, result.Handled)
	assert.Contains(t, result.Response, "10:00")

	pending, err := store.Consume(ctx, "conv1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	booking := pending.Data.Confirmation.Booking
	assert.Equal(t, "10:00", booking.StartTime)
	assert.Equal(t, "t2", booking.TechnicianID)
	assert.Equal(t, 5, booking.TechnicianMaxJobs)
}

// An out-of-range slot index re-registers the prompt so the customer can
// tap again instead of losing the session.
func TestHandleSlotSelectionBadIndexRetries(t *testing.T) {
	router, store := newTestRouter(&fakeJobRepo{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingSlots()))

	result, err := router.Handle(ctx, click("slot_7"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, models.ActionWaitInput, result.Action)
	assert.Contains(t, result.Response, "no es válida")

	pending, err := store.Consume(ctx, "conv1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, models.InteractionTimeSlotSelection, pending.Type)
}

func pendingConfirmation() models.PendingInteraction {
	return models.PendingInteraction{
		Type:           models.InteractionConfirmation,
		OrganizationID: "org1",
		CustomerPhone:  "+525512345678",
		Data: models.InteractionData{Confirmation: &models.ConfirmationData{
			Booking: models.BookingDraft{
				OrganizationID:    "org1",
				CustomerID:        "c1",
				CustomerPhone:     "+525512345678",
				TechnicianID:      "t1",
				TechnicianName:    "Juan",
				TechnicianMaxJobs: 5,
				Date:              "2026-09-07",
				StartTime:         "09:00",
				EndTime:           "10:00",
				ServiceType:       "plomería",
			},
		}},
	}
}

func TestHandleConfirmYesCreatesJob(t *testing.T) {
	jobs := &fakeJobRepo{}
	router, store := newTestRouter(jobs)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingConfirmation()))

	result, err := router.Handle(ctx, click("confirm_yes"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, models.ActionCreateJob, result.Action)
	assert.Contains(t, result.Response, "agendada")
	require.NotNil(t, result.Data)
	require.NotNil(t, result.Data.Job)
	assert.Equal(t, models.JobStatusConfirmed, result.Data.Job.Status)
	assert.Equal(t, "t1", result.Data.Job.TechnicianID)
	require.Len(t, jobs.created, 1)

	// The interaction was consumed: a second click finds nothing.
	result, err = router.Handle(ctx, click("confirm_yes"))
	require.NoError(t, err)
	assert.Contains(t, result.Response, "sesión expiró")
}

func TestHandleConfirmNoDeclines(t *testing.T) {
	jobs := &fakeJobRepo{}
	router, store := newTestRouter(jobs)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingConfirmation()))

	result, err := router.Handle(ctx, click("confirm_no"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Empty(t, jobs.created)
}

func TestHandleConfirmRescheduleAsksForNewTime(t *testing.T) {
	router, store := newTestRouter(&fakeJobRepo{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingConfirmation()))

	result, err := router.Handle(ctx, click("confirm_reschedule"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Response, "reagendar")
}

func TestHandleConfirmCapacityConflictRetryable(t *testing.T) {
	jobs := &fakeJobRepo{createErr: jobRepo.ErrCapacityConflict}
	router, store := newTestRouter(jobs)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingConfirmation()))

	result, err := router.Handle(ctx, click("confirm_yes"))
	require.NoError(t, err, "capacity conflicts are data, not errors")
	assert.True(t, result.Handled)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Contains(t, result.Response, "se acaba de ocupar")
	assert.Nil(t, result.Data)
}

func TestHandleServiceSelection(t *testing.T) {
	router, store := newTestRouter(&fakeJobRepo{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", models.PendingInteraction{
		Type:           models.InteractionServiceSelection,
		OrganizationID: "org1",
		Data: models.InteractionData{ServiceSelection: &models.ServiceSelectionData{
			Services:      []string{"plomería", "electricidad"},
			PreferredDate: "2026-09-07",
		}},
	}))

	result, err := router.Handle(ctx, click("service_plomería"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Contains(t, result.Response, "plomería")
	assert.Contains(t, result.Response, "2026-09-07")
}

func TestInferButtonID(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Confirmar", "confirm_yes"},
		{"Sí", "confirm_yes"},
		{"si", "confirm_yes"},
		{"Reagendar", "confirm_reschedule"},
		{"Prefiero otro horario", "confirm_reschedule"},
		{"No", "confirm_no"},
		{"No, gracias", "confirm_no"},
		{"", ""},
		{"Cualquier cosa", "btn_cualquier_cosa"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferButtonID(tt.title), "title %q", tt.title)
	}
}

// A title-only click whose inferred id matches nothing falls through to
// unhandled instead of raising.
func TestHandleTitleOnlyUnknownFallsThrough(t *testing.T) {
	router, _ := newTestRouter(&fakeJobRepo{})

	bc := click("")
	bc.ButtonTitle = "Algo inesperado"
	result, err := router.Handle(context.Background(), bc)
	require.NoError(t, err)
	assert.False(t, result.Handled)
}

func TestHandleTitleOnlyConfirmation(t *testing.T) {
	jobs := &fakeJobRepo{}
	router, store := newTestRouter(jobs)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "conv1", pendingConfirmation()))

	bc := click("")
	bc.ButtonTitle = "Confirmar"
	result, err := router.Handle(ctx, bc)
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, models.ActionCreateJob, result.Action)
	require.Len(t, jobs.created, 1)
}
