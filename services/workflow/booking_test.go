package workflow

import (
	"context"
	"testing"
	"time"

	jobRepo "fieldbot/database/repository/job"
	"fieldbot/models"
	"fieldbot/services/interaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSchedulingService struct {
	result *models.SchedulingResult
	err    error
}

func (f *fakeSchedulingService) GetSchedulingContext(ctx context.Context, sc models.SchedulingContext) (*models.SchedulingResult, error) {
	return f.result, f.err
}

type fakeCustomerRepo struct {
	customer *models.Customer
	created  bool
	deleted  []string
}

func (f *fakeCustomerRepo) FindOrCreateByPhone(ctx context.Context, orgID, phone, name string) (*models.Customer, bool, error) {
	return f.customer, f.created, nil
}

func (f *fakeCustomerRepo) DeleteByID(ctx context.Context, orgID, customerID string) error {
	f.deleted = append(f.deleted, customerID)
	return nil
}

type fakeBookingJobRepo struct {
	createErr error
	created   []*models.Job
	cancelled []string
}

func (f *fakeBookingJobRepo) GetActiveForDate(ctx context.Context, orgID, date string) ([]models.Job, error) {
	return nil, nil
}

func (f *fakeBookingJobRepo) CreateBooking(ctx context.Context, job *models.Job, maxDailyJobs int) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, job)
	return nil
}

func (f *fakeBookingJobRepo) CancelBooking(ctx context.Context, orgID, jobID string) error {
	f.cancelled = append(f.cancelled, jobID)
	return nil
}

func (f *fakeBookingJobRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeReminderScheduler struct {
	scheduled []string
}

func (f *fakeReminderScheduler) ScheduleBookingReminder(ctx context.Context, job *models.Job, customerPhone string) error {
	f.scheduled = append(f.scheduled, job.ID)
	return nil
}

func openDayResult() *models.SchedulingResult {
	return &models.SchedulingResult{
		IsWorkingDay:  true,
		BusinessHours: &models.HoursRange{Start: "09:00", End: "18:00"},
		Technicians: []models.TechnicianAvailability{
			{ID: "t1", Name: "Juan", IsAvailable: true, MaxDailyJobs: 5, WorkloadLevel: models.WorkloadLow},
		},
		AvailableSlots: []models.TimeSlot{
			{Start: "09:00", End: "10:00", AvailableTechnicians: 1, Confidence: models.ConfidenceMedium, BestTechnician: &models.BestTechnician{ID: "t1", Name: "Juan"}},
			{Start: "10:00", End: "11:00", AvailableTechnicians: 1, Confidence: models.ConfidenceMedium, BestTechnician: &models.BestTechnician{ID: "t1", Name: "Juan"}},
			{Start: "11:00", End: "12:00", AvailableTechnicians: 0, Confidence: models.ConfidenceLow},
		},
		Summary: "El lunes 07/09 tenemos 1 técnico(s) disponibles.",
	}
}

func newBookingWorkflow(sched *fakeSchedulingService, jobs *fakeBookingJobRepo, store interaction.Store) (*BookingWorkflow, *fakeCustomerRepo, *fakeReminderScheduler) {
	customers := &fakeCustomerRepo{
		customer: &models.Customer{ID: "c1", Name: "María", Phone: "+525512345678"},
	}
	reminders := &fakeReminderScheduler{}
	wf := &BookingWorkflow{
		Scheduling:   sched,
		Customers:    customers,
		Jobs:         jobs,
		Interactions: store,
		Reminders:    reminders,
		Services:     []string{"plomería", "electricidad"},
		Logger:       zap.NewNop(),
	}
	return wf, customers, reminders
}

func bookingContext(entities map[string]string) *models.WorkflowContext {
	return &models.WorkflowContext{
		OrganizationID: "org1",
		ConversationID: "conv1",
		CustomerPhone:  "+525512345678",
		Entities:       entities,
	}
}

func TestBookingCanHandle(t *testing.T) {
	wf := &BookingWorkflow{}
	assert.True(t, wf.CanHandle("agendar_visita", nil))
	assert.True(t, wf.CanHandle("reservar", nil))
	assert.True(t, wf.CanHandle("consulta", map[string]string{"serviceType": "plomería", "preferredDate": "2026-09-07"}))
	assert.False(t, wf.CanHandle("consulta", map[string]string{"serviceType": "plomería"}))
	assert.False(t, wf.CanHandle("consulta", nil))
}

func TestBookingMissingDateAsksForIt(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	wf, _, _ := newBookingWorkflow(&fakeSchedulingService{}, &fakeBookingJobRepo{}, store)
	engine := NewEngine(zap.NewNop())

	result := engine.Execute(context.Background(), wf, bookingContext(map[string]string{
		"serviceType": "plomería",
	}))

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Contains(t, result.Response, "fecha")
	assert.Len(t, result.StepResults, 1, "later steps never ran")
}

func TestBookingMissingServicePausesForSelection(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	wf, _, _ := newBookingWorkflow(&fakeSchedulingService{}, &fakeBookingJobRepo{}, store)
	engine := NewEngine(zap.NewNop())

	result := engine.Execute(context.Background(), wf, bookingContext(map[string]string{
		"preferredDate": "2026-09-07",
	}))

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionWaitInput, result.Action)
	assert.Contains(t, result.Response, "plomería")

	pending, err := store.Consume(context.Background(), "conv1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, models.InteractionServiceSelection, pending.Type)
	require.NotNil(t, pending.Data.ServiceSelection)
	assert.Equal(t, "2026-09-07", pending.Data.ServiceSelection.PreferredDate)
}

// The usual chat flow: slots offered as buttons, a slot-selection pending
// interaction registered, execution suspended at present_slots.
func TestBookingOffersSlotsAndSuspends(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	wf, _, _ := newBookingWorkflow(&fakeSchedulingService{result: openDayResult()}, &fakeBookingJobRepo{}, store)
	engine := NewEngine(zap.NewNop())

	result := engine.Execute(context.Background(), wf, bookingContext(map[string]string{
		"preferredDate": "2026-09-07",
		"serviceType":   "plomería",
	}))

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionWaitInput, result.Action)
	assert.Contains(t, result.Response, "1) 09:00 - 10:00")
	assert.Contains(t, result.Response, "2) 10:00 - 11:00")
	assert.NotContains(t, result.Response, "11:00 - 12:00", "slot with no capacity is never offered")

	assert.Contains(t, result.StepResults, "validate_request")
	assert.Contains(t, result.StepResults, "find_or_create_customer")
	assert.Contains(t, result.StepResults, "check_availability")
	assert.Contains(t, result.StepResults, "present_slots")
	assert.NotContains(t, result.StepResults, "create_job")

	pending, err := store.Consume(context.Background(), "conv1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, models.InteractionTimeSlotSelection, pending.Type)
	require.NotNil(t, pending.Data.SlotSelection)
	assert.Len(t, pending.Data.SlotSelection.Slots, 2)
	assert.Equal(t, "c1", pending.Data.SlotSelection.CustomerID)
	assert.Equal(t, map[string]int{"t1": 5}, pending.Data.SlotSelection.TechnicianCapacities,
		"configured capacities travel with the offer for the commit-time check")
}

func TestBookingNonWorkingDayEarlyReturn(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	sched := &fakeSchedulingService{result: &models.SchedulingResult{
		IsWorkingDay:   false,
		HasConflict:    true,
		ConflictReason: "no atendemos los domingos",
		Summary:        "Lo sentimos, no atendemos los domingos. Te podemos atender: lunes 07/09.",
	}}
	wf, _, _ := newBookingWorkflow(sched, &fakeBookingJobRepo{}, store)
	engine := NewEngine(zap.NewNop())

	result := engine.Execute(context.Background(), wf, bookingContext(map[string]string{
		"preferredDate": "2026-09-06",
		"serviceType":   "plomería",
	}))

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Contains(t, result.Response, "domingos")
	assert.NotContains(t, result.StepResults, "present_slots")
}

// Direct path: explicit time, no conflict, confirmation already in the
// message. The workflow runs through create_job in a single execution.
func TestBookingDirectPathCreatesJob(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	jobs := &fakeBookingJobRepo{}
	wf, _, reminders := newBookingWorkflow(&fakeSchedulingService{result: openDayResult()}, jobs, store)
	engine := NewEngine(zap.NewNop())

	result := engine.Execute(context.Background(), wf, bookingContext(map[string]string{
		"preferredDate": "2026-09-07",
		"preferredTime": "09:30",
		"serviceType":   "plomería",
		"confirmation":  "yes",
	}))

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionCreateJob, result.Action)
	require.NotNil(t, result.JobCreated)
	assert.Equal(t, "09:00", result.JobCreated.StartTime)
	assert.Equal(t, "10:00", result.JobCreated.EndTime)
	assert.Equal(t, "t1", result.JobCreated.TechnicianID)
	assert.Equal(t, models.JobStatusConfirmed, result.JobCreated.Status)
	require.Len(t, jobs.created, 1)
	assert.Equal(t, jobs.created[0].ID, reminders.scheduled[0])
	assert.Contains(t, result.Response, "agendada")
}

// Explicit time without explicit confirmation: the workflow registers a
// confirmation pending interaction and waits.
func TestBookingExplicitTimeAsksForConfirmation(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	jobs := &fakeBookingJobRepo{}
	wf, _, _ := newBookingWorkflow(&fakeSchedulingService{result: openDayResult()}, jobs, store)
	engine := NewEngine(zap.NewNop())

	result := engine.Execute(context.Background(), wf, bookingContext(map[string]string{
		"preferredDate": "2026-09-07",
		"preferredTime": "10:15",
		"serviceType":   "plomería",
	}))

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionWaitInput, result.Action)
	assert.Contains(t, result.Response, "¿Confirmas")
	assert.Empty(t, jobs.created)

	pending, err := store.Consume(context.Background(), "conv1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, models.InteractionConfirmation, pending.Type)
	require.NotNil(t, pending.Data.Confirmation)
	assert.Equal(t, "10:00", pending.Data.Confirmation.Booking.StartTime)
	assert.Equal(t, 5, pending.Data.Confirmation.Booking.TechnicianMaxJobs)
}

// A write-time capacity conflict is retryable, not a failure: no rollback,
// no error action, and the customer is asked to pick again.
func TestBookingCapacityConflictIsRetryable(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	jobs := &fakeBookingJobRepo{createErr: jobRepo.ErrCapacityConflict}
	wf, customers, _ := newBookingWorkflow(&fakeSchedulingService{result: openDayResult()}, jobs, store)
	engine := NewEngine(zap.NewNop())

	result := engine.Execute(context.Background(), wf, bookingContext(map[string]string{
		"preferredDate": "2026-09-07",
		"preferredTime": "09:30",
		"serviceType":   "plomería",
		"confirmation":  "yes",
	}))

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Contains(t, result.Response, "se acaba de ocupar")
	assert.Nil(t, result.JobCreated)
	assert.Empty(t, customers.deleted, "no rollback on a retryable conflict")
}

// A customer record created during a failed execution is removed by rollback;
// a pre-existing customer is left alone.
func TestBookingRollbackDeletesOnlyCreatedCustomer(t *testing.T) {
	store := interaction.NewMemoryStore(time.Minute, zap.NewNop())
	jobs := &fakeBookingJobRepo{createErr: context.DeadlineExceeded}

	wf, customers, _ := newBookingWorkflow(&fakeSchedulingService{result: openDayResult()}, jobs, store)
	customers.created = true
	engine := NewEngine(zap.NewNop())

	entities := map[string]string{
		"preferredDate": "2026-09-07",
		"preferredTime": "09:30",
		"serviceType":   "plomería",
		"confirmation":  "yes",
	}
	result := engine.Execute(context.Background(), wf, bookingContext(entities))

	assert.False(t, result.Success)
	assert.Equal(t, "create_job", result.FailedStep)
	assert.Equal(t, []string{"c1"}, customers.deleted)

	// Same failure with a pre-existing customer: nothing to undo.
	wf2, customers2, _ := newBookingWorkflow(&fakeSchedulingService{result: openDayResult()}, jobs, store)
	result = NewEngine(zap.NewNop()).Execute(context.Background(), wf2, bookingContext(entities))
	assert.False(t, result.Success)
	assert.Empty(t, customers2.deleted)
}
