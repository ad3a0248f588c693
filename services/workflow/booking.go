package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	customerRepo "fieldbot/database/repository/customer"
	jobRepo "fieldbot/database/repository/job"
	"fieldbot/models"
	"fieldbot/services/interaction"
	"fieldbot/services/scheduling"
	"fieldbot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingWorkflow turns an "agendar visita" intent into a confirmed job. It
// usually suspends at present_slots waiting for a button reply; the direct
// path (explicit time plus explicit confirmation in the same message) runs
// through create_job in a single execution.
type BookingWorkflow struct {
	Scheduling   scheduling.SchedulingService
	Customers    customerRepo.CustomerRepository
	Jobs         jobRepo.JobRepository
	Interactions interaction.Store
	Reminders    interaction.ReminderScheduler // optional
	Services     []string                      // offered when the message names no service
	Logger       *zap.Logger
}

func (w *BookingWorkflow) Intent() string { return "agendar_visita" }

func (w *BookingWorkflow) CanHandle(intent string, entities map[string]string) bool {
	switch intent {
	case "agendar_visita", "agendar", "reservar", "booking":
		return true
	}
	// Booking-capable messages that the extractor labeled more loosely.
	return entities["serviceType"] != "" && entities["preferredDate"] != ""
}

func (w *BookingWorkflow) Steps() []Step {
	return []Step{
		{ID: "validate_request", Name: "Validar solicitud", Execute: w.validateRequest},
		{ID: "find_or_create_customer", Name: "Resolver cliente", Execute: w.findOrCreateCustomer, Rollback: w.rollbackCustomer},
		{ID: "check_availability", Name: "Consultar disponibilidad", Execute: w.checkAvailability},
		{ID: "present_slots", Name: "Ofrecer horarios", Execute: w.presentSlots},
		{ID: "create_job", Name: "Agendar visita", Execute: w.createJob, Rollback: w.rollbackJob},
	}
}

func (w *BookingWorkflow) validateRequest(ctx context.Context, wc *models.WorkflowContext) models.StepResult {
	if wc.Entity("preferredDate") == "" {
		question := "¿Para qué fecha te gustaría agendar la visita?"
		return models.StepResult{
			Success:       true,
			RequiresInput: &models.RequiresInput{Field: "preferredDate", Question: question},
			EarlyReturn:   &models.EarlyReturn{Response: question, Action: models.ActionRespond},
		}
	}

	if wc.Entity("serviceType") == "" && len(w.Services) > 0 {
		pending := models.PendingInteraction{
			Type:           models.InteractionServiceSelection,
			OrganizationID: wc.OrganizationID,
			CustomerPhone:  wc.CustomerPhone,
			Data: models.InteractionData{ServiceSelection: &models.ServiceSelectionData{
				Services:      w.Services,
				PreferredDate: wc.Entity("preferredDate"),
			}},
		}
		if err := w.Interactions.Set(ctx, wc.ConversationID, pending); err != nil {
			return models.StepResult{Success: false, Error: err.Error()}
		}
		return models.StepResult{
			Success:     true,
			EarlyReturn: &models.EarlyReturn{Response: w.serviceMenu(), Action: models.ActionWaitInput},
		}
	}

	return models.StepResult{Success: true}
}

func (w *BookingWorkflow) serviceMenu() string {
	var b strings.Builder
	b.WriteString("¿Qué servicio necesitas?\n")
	for _, s := range w.Services {
		b.WriteString(fmt.Sprintf("• %s\n", s))
	}
	b.WriteString("Elige una opción con los botones.")
	return b.String()
}

func (w *BookingWorkflow) findOrCreateCustomer(ctx context.Context, wc *models.WorkflowContext) models.StepResult {
	customer, created, err := w.Customers.FindOrCreateByPhone(ctx, wc.OrganizationID, wc.CustomerPhone, wc.CustomerName)
	if err != nil {
		return models.StepResult{Success: false, Error: err.Error()}
	}
	wc.CustomerID = customer.ID
	if wc.CustomerName == "" {
		wc.CustomerName = customer.Name
	}
	return models.StepResult{
		Success: true,
		Data:    &models.StepData{Customer: customer, CustomerCreated: created},
	}
}

// rollbackCustomer removes a customer record created in this execution.
// Pre-existing customers are left untouched.
func (w *BookingWorkflow) rollbackCustomer(ctx context.Context, wc *models.WorkflowContext) error {
	sr, ok := wc.StepResults["find_or_create_customer"]
	if !ok || sr.Data == nil || !sr.Data.CustomerCreated || sr.Data.Customer == nil {
		return nil
	}
	return w.Customers.DeleteByID(ctx, wc.OrganizationID, sr.Data.Customer.ID)
}

func (w *BookingWorkflow) checkAvailability(ctx context.Context, wc *models.WorkflowContext) models.StepResult {
	sc := models.SchedulingContext{
		OrganizationID: wc.OrganizationID,
		Date:           wc.Entity("preferredDate"),
		RequestedTime:  wc.Entity("preferredTime"),
		ServiceType:    wc.Entity("serviceType"),
	}
	result, err := w.Scheduling.GetSchedulingContext(ctx, sc)
	if err != nil {
		return models.StepResult{Success: false, Error: err.Error()}
	}
	wc.Scheduling = result

	if !result.IsWorkingDay {
		return models.StepResult{
			Success:     true,
			Data:        &models.StepData{Scheduling: result},
			EarlyReturn: &models.EarlyReturn{Response: result.Summary, Action: models.ActionRespond},
		}
	}
	return models.StepResult{Success: true, Data: &models.StepData{Scheduling: result}}
}

func (w *BookingWorkflow) presentSlots(ctx context.Context, wc *models.WorkflowContext) models.StepResult {
	result := wc.Scheduling
	if result == nil {
		return models.StepResult{Success: false, Error: "no scheduling context available"}
	}

	// Direct path: exact time requested, no conflict, explicit confirmation
	// already present in the message. create_job takes over.
	if wc.Entity("preferredTime") != "" && !result.HasConflict && wc.Entity("confirmation") == "yes" {
		return models.StepResult{Success: true}
	}

	// Exact time requested and free, but not yet confirmed: ask for a yes/no.
	if wc.Entity("preferredTime") != "" && !result.HasConflict {
		draft, ok := w.draftForRequestedTime(wc)
		if !ok {
			return models.StepResult{Success: false, Error: "requested time has no matching slot"}
		}
		pending := models.PendingInteraction{
			Type:           models.InteractionConfirmation,
			OrganizationID: wc.OrganizationID,
			CustomerPhone:  wc.CustomerPhone,
			Data:           models.InteractionData{Confirmation: &models.ConfirmationData{Booking: draft}},
		}
		if err := w.Interactions.Set(ctx, wc.ConversationID, pending); err != nil {
			return models.StepResult{Success: false, Error: err.Error()}
		}
		response := fmt.Sprintf("¿Confirmas tu visita el %s de %s a %s", draft.Date, draft.StartTime, draft.EndTime)
		if draft.TechnicianName != "" {
			response += fmt.Sprintf(" con %s", draft.TechnicianName)
		}
		response += "? Responde con los botones: Confirmar, No o Reagendar."
		return models.StepResult{
			Success:     true,
			EarlyReturn: &models.EarlyReturn{Response: response, Action: models.ActionWaitInput},
		}
	}

	// Otherwise offer up to three open slots as buttons.
	var offered []models.TimeSlot
	for _, slot := range result.AvailableSlots {
		if slot.AvailableTechnicians == 0 {
			continue
		}
		offered = append(offered, slot)
		if len(offered) == 3 {
			break
		}
	}
	if len(offered) == 0 {
		return models.StepResult{
			Success:     true,
			EarlyReturn: &models.EarlyReturn{Response: result.Summary, Action: models.ActionRespond},
		}
	}

	capacities := make(map[string]int, len(result.Technicians))
	for _, tech := range result.Technicians {
		capacities[tech.ID] = tech.MaxDailyJobs
	}

	pending := models.PendingInteraction{
		Type:           models.InteractionTimeSlotSelection,
		OrganizationID: wc.OrganizationID,
		CustomerPhone:  wc.CustomerPhone,
		Data: models.InteractionData{SlotSelection: &models.SlotSelectionData{
			Date:                 wc.Entity("preferredDate"),
			ServiceType:          wc.Entity("serviceType"),
			Slots:                offered,
			TechnicianCapacities: capacities,
			CustomerID:           wc.CustomerID,
			CustomerName:         wc.CustomerName,
			Address:              wc.Entity("address"),
			ProblemDescription:   wc.Entity("problemDescription"),
		}},
	}
	if err := w.Interactions.Set(ctx, wc.ConversationID, pending); err != nil {
		return models.StepResult{Success: false, Error: err.Error()}
	}

	var b strings.Builder
	if result.HasConflict {
		b.WriteString(result.ConflictReason)
		b.WriteString(". Estos horarios sí están disponibles:\n")
	} else {
		b.WriteString(fmt.Sprintf("Tenemos estos horarios para el %s:\n", wc.Entity("preferredDate")))
	}
	// Numbered from 1 for the customer; the channel's buttons reference
	// these options as slot_0..slot_{n-1} in offered order.
	for i, slot := range offered {
		b.WriteString(fmt.Sprintf("%d) %s - %s\n", i+1, slot.Start, slot.End))
	}
	b.WriteString("Elige uno con los botones.")
	return models.StepResult{
		Success:     true,
		EarlyReturn: &models.EarlyReturn{Response: b.String(), Action: models.ActionWaitInput},
	}
}

// draftForRequestedTime builds a booking draft from the slot containing the
// requested time.
func (w *BookingWorkflow) draftForRequestedTime(wc *models.WorkflowContext) (models.BookingDraft, bool) {
	result := wc.Scheduling
	requested, err := utils.ParseClock(wc.Entity("preferredTime"))
	if err != nil {
		return models.BookingDraft{}, false
	}

	for _, slot := range result.AvailableSlots {
		start, err1 := utils.ParseClock(slot.Start)
		end, err2 := utils.ParseClock(slot.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if requested < start || requested >= end || slot.AvailableTechnicians == 0 {
			continue
		}

		draft := models.BookingDraft{
			OrganizationID:     wc.OrganizationID,
			CustomerID:         wc.CustomerID,
			CustomerPhone:      wc.CustomerPhone,
			CustomerName:       wc.CustomerName,
			Date:               wc.Entity("preferredDate"),
			StartTime:          slot.Start,
			EndTime:            slot.End,
			ServiceType:        wc.Entity("serviceType"),
			Address:            wc.Entity("address"),
			ProblemDescription: wc.Entity("problemDescription"),
		}
		if slot.BestTechnician != nil {
			draft.TechnicianID = slot.BestTechnician.ID
			draft.TechnicianName = slot.BestTechnician.Name
			draft.TechnicianMaxJobs = w.technicianCapacity(result, slot.BestTechnician.ID)
		}
		return draft, true
	}
	return models.BookingDraft{}, false
}

func (w *BookingWorkflow) technicianCapacity(result *models.SchedulingResult, techID string) int {
	for _, t := range result.Technicians {
		if t.ID == techID {
			return t.MaxDailyJobs
		}
	}
	return 0
}

func (w *BookingWorkflow) createJob(ctx context.Context, wc *models.WorkflowContext) models.StepResult {
	draft, ok := w.draftForRequestedTime(wc)
	if !ok {
		return models.StepResult{Success: false, Error: "requested time has no matching slot"}
	}

	job := &models.Job{
		ID:             uuid.New().String(),
		OrganizationID: draft.OrganizationID,
		TechnicianID:   draft.TechnicianID,
		CustomerID:     draft.CustomerID,
		Date:           draft.Date,
		StartTime:      draft.StartTime,
		EndTime:        draft.EndTime,
		ServiceType:    draft.ServiceType,
		Address:        draft.Address,
		Description:    draft.ProblemDescription,
		Status:         models.JobStatusConfirmed,
		CreatedAt:      time.Now(),
	}

	maxDaily := draft.TechnicianMaxJobs
	if maxDaily <= 0 {
		maxDaily = utils.MaxDailyJobsDefault
	}

	if err := w.Jobs.CreateBooking(ctx, job, maxDaily); err != nil {
		if errors.Is(err, jobRepo.ErrCapacityConflict) {
			// The slot went stale between the query and the commit. Not a
			// failure: ask for a fresh attempt without undoing prior steps.
			return models.StepResult{
				Success: true,
				EarlyReturn: &models.EarlyReturn{
					Response: "Ese horario se acaba de ocupar. Envíanos de nuevo la fecha que te interesa y te mostramos los horarios actualizados.",
					Action:   models.ActionRespond,
				},
			}
		}
		return models.StepResult{Success: false, Error: err.Error()}
	}

	if w.Reminders != nil {
		if err := w.Reminders.ScheduleBookingReminder(ctx, job, draft.CustomerPhone); err != nil && w.Logger != nil {
			w.Logger.Warn("failed to schedule booking reminder", zap.Error(err))
		}
	}
	return models.StepResult{Success: true, Data: &models.StepData{Job: job}}
}

func (w *BookingWorkflow) rollbackJob(ctx context.Context, wc *models.WorkflowContext) error {
	sr, ok := wc.StepResults["create_job"]
	if !ok || sr.Data == nil || sr.Data.Job == nil {
		return nil
	}
	return w.Jobs.CancelBooking(ctx, wc.OrganizationID, sr.Data.Job.ID)
}

func (w *BookingWorkflow) GenerateResponse(wc *models.WorkflowContext, result *models.WorkflowResult) string {
	if result.JobCreated != nil {
		msg := fmt.Sprintf("¡Listo! Tu visita quedó agendada para el %s a las %s", result.JobCreated.Date, result.JobCreated.StartTime)
		if wc.Scheduling != nil && wc.Scheduling.BestSlot != nil && wc.Scheduling.BestSlot.BestTechnician != nil {
			msg += fmt.Sprintf(" con %s", wc.Scheduling.BestSlot.BestTechnician.Name)
		}
		return msg + ". Te enviaremos un recordatorio antes de la visita."
	}
	if wc.Scheduling != nil {
		return wc.Scheduling.Summary
	}
	return "Recibimos tu solicitud. ¿En qué más te podemos ayudar?"
}
