package interaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jobRepo "fieldbot/database/repository/job"
	"fieldbot/models"
	"fieldbot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionExpiredMsg = "Tu sesión expiró. Por favor envíanos de nuevo tu solicitud para continuar."

// ReminderScheduler enqueues a reminder for a confirmed booking.
type ReminderScheduler interface {
	ScheduleBookingReminder(ctx context.Context, job *models.Job, customerPhone string) error
}

// ButtonClickContext is an interactive-message reply from the chat channel.
type ButtonClickContext struct {
	OrganizationID string `json:"organizationId"`
	ConversationID string `json:"conversationId"`
	CustomerPhone  string `json:"customerPhone"`
	ButtonID       string `json:"buttonId"`
	ButtonTitle    string `json:"buttonTitle,omitempty"`
}

// ButtonClickResult is the router's answer. Handled=false means the id was
// not recognized and the caller should fall back to generic handling.
type ButtonClickResult struct {
	Handled  bool                  `json:"handled"`
	Response string                `json:"response,omitempty"`
	Action   models.WorkflowAction `json:"action,omitempty"`
	Data     *models.StepData      `json:"data,omitempty"`
}

// ButtonRouter resumes paused conversations from button clicks. Stateful
// prefixes (slot_, confirm_, service_/svc_) consume the conversation's
// pending interaction; faq_ buttons dispatch statelessly.
type ButtonRouter struct {
	Store      Store
	Jobs       jobRepo.JobRepository
	Reminders  ReminderScheduler // optional
	FAQAnswers map[string]string
	Logger     *zap.Logger
}

func NewButtonRouter(store Store, jobs jobRepo.JobRepository, logger *zap.Logger) *ButtonRouter {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &ButtonRouter{
		Store:      store,
		Jobs:       jobs,
		FAQAnswers: defaultFAQAnswers,
		Logger:     logger,
	}
}

var defaultFAQAnswers = map[string]string{
	"faq_horario":   "Atendemos de lunes a sábado. Escríbenos el día que te interesa y te decimos los horarios disponibles.",
	"faq_precios":   "El costo depende del servicio. La visita de diagnóstico se cotiza al agendar.",
	"faq_cobertura": "Cubrimos toda la zona metropolitana. Compártenos tu dirección para confirmar.",
}

// Handle resolves a button click. It never returns an error for unknown or
// stale buttons: those produce Handled=false or a graceful expired-session
// response respectively.
func (r *ButtonRouter) Handle(ctx context.Context, bc ButtonClickContext) (*ButtonClickResult, error) {
	id := bc.ButtonID
	if id == "" {
		id = InferButtonID(bc.ButtonTitle)
		r.Logger.Debug("button id inferred from title",
			zap.String("title", bc.ButtonTitle),
			zap.String("inferred", id))
	}

	switch {
	case strings.HasPrefix(id, "faq_"):
		return r.handleFAQ(id), nil

	case strings.HasPrefix(id, "slot_"):
		pi, err := r.consume(ctx, bc.ConversationID, models.InteractionTimeSlotSelection)
		if err != nil {
			return nil, err
		}
		if pi == nil {
			return &ButtonClickResult{Handled: true, Response: sessionExpiredMsg, Action: models.ActionRespond}, nil
		}
		return r.handleSlotSelection(ctx, bc, id, pi)

	case strings.HasPrefix(id, "confirm_"):
		pi, err := r.consume(ctx, bc.ConversationID, models.InteractionConfirmation)
		if err != nil {
			return nil, err
		}
		if pi == nil {
			return &ButtonClickResult{Handled: true, Response: sessionExpiredMsg, Action: models.ActionRespond}, nil
		}
		return r.handleConfirmation(ctx, bc, id, pi)

	case strings.HasPrefix(id, "service_"), strings.HasPrefix(id, "svc_"):
		pi, err := r.consume(ctx, bc.ConversationID, models.InteractionServiceSelection)
		if err != nil {
			return nil, err
		}
		if pi == nil {
			return &ButtonClickResult{Handled: true, Response: sessionExpiredMsg, Action: models.ActionRespond}, nil
		}
		return r.handleServiceSelection(id, pi), nil

	default:
		r.Logger.Info("unhandled button id", zap.String("buttonId", id))
		return &ButtonClickResult{Handled: false}, nil
	}
}

// consume atomically takes the pending interaction and checks its type. A
// type mismatch means the stored state belongs to a different prompt, so the
// click is treated as stale.
func (r *ButtonRouter) consume(ctx context.Context, conversationID string, want models.PendingInteractionType) (*models.PendingInteraction, error) {
	pi, err := r.Store.Consume(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("button router: %w", err)
	}
	if pi == nil || pi.Type != want {
		return nil, nil
	}
	return pi, nil
}

func (r *ButtonRouter) handleFAQ(id string) *ButtonClickResult {
	answer, ok := r.FAQAnswers[id]
	if !ok {
		answer = "No tengo esa información a la mano, pero un asesor te puede ayudar. ¿Te comunicamos con uno?"
	}
	return &ButtonClickResult{Handled: true, Response: answer, Action: models.ActionRespond}
}

func (r *ButtonRouter) handleSlotSelection(ctx context.Context, bc ButtonClickContext, id string, pi *models.PendingInteraction) (*ButtonClickResult, error) {
	data := pi.Data.SlotSelection
	if data == nil {
		return &ButtonClickResult{Handled: true, Response: sessionExpiredMsg, Action: models.ActionRespond}, nil
	}

	// slot_N is a zero-based index into the stored slots; the chat text
	// numbers the same options from 1 for display.
	idx, err := strconv.Atoi(strings.TrimPrefix(id, "slot_"))
	if err != nil || idx < 0 || idx >= len(data.Slots) {
		// Re-register so the customer can tap again.
		if serr := r.Store.Set(ctx, bc.ConversationID, *pi); serr != nil {
			return nil, serr
		}
		return &ButtonClickResult{
			Handled:  true,
			Response: "Esa opción no es válida. Elige uno de los horarios que te enviamos.",
			Action:   models.ActionWaitInput,
		}, nil
	}

	slot := data.Slots[idx]
	draft := models.BookingDraft{
		OrganizationID:     pi.OrganizationID,
		CustomerID:         data.CustomerID,
		CustomerPhone:      pi.CustomerPhone,
		CustomerName:       data.CustomerName,
		Date:               data.Date,
		StartTime:          slot.Start,
		EndTime:            slot.End,
		ServiceType:        data.ServiceType,
		Address:            data.Address,
		ProblemDescription: data.ProblemDescription,
	}
	if slot.BestTechnician != nil {
		draft.TechnicianID = slot.BestTechnician.ID
		draft.TechnicianName = slot.BestTechnician.Name
		draft.TechnicianMaxJobs = data.TechnicianCapacities[slot.BestTechnician.ID]
	}

	confirmation := models.PendingInteraction{
		Type:           models.InteractionConfirmation,
		OrganizationID: pi.OrganizationID,
		CustomerPhone:  pi.CustomerPhone,
		Data:           models.InteractionData{Confirmation: &models.ConfirmationData{Booking: draft}},
	}
	if err := r.Store.Set(ctx, bc.ConversationID, confirmation); err != nil {
		return nil, fmt.Errorf("button router: %w", err)
	}

	response := fmt.Sprintf("¿Confirmas tu visita el %s de %s a %s", draft.Date, draft.StartTime, draft.EndTime)
	if draft.TechnicianName != "" {
		response += fmt.Sprintf(" con %s", draft.TechnicianName)
	}
	response += "? Responde con los botones: Confirmar, No o Reagendar."
	return &ButtonClickResult{Handled: true, Response: response, Action: models.ActionWaitInput}, nil
}

func (r *ButtonRouter) handleConfirmation(ctx context.Context, bc ButtonClickContext, id string, pi *models.PendingInteraction) (*ButtonClickResult, error) {
	data := pi.Data.Confirmation
	if data == nil {
		return &ButtonClickResult{Handled: true, Response: sessionExpiredMsg, Action: models.ActionRespond}, nil
	}

	switch id {
	case "confirm_yes":
		return r.commitBooking(ctx, bc, data.Booking)

	case "confirm_no":
		return &ButtonClickResult{
			Handled:  true,
			Response: "De acuerdo, no agendamos nada. Escríbenos cuando quieras retomar tu solicitud.",
			Action:   models.ActionRespond,
		}, nil

	case "confirm_reschedule":
		return &ButtonClickResult{
			Handled:  true,
			Response: "Claro, ¿para qué día y hora te gustaría reagendar tu visita?",
			Action:   models.ActionRespond,
		}, nil

	default:
		// Unknown confirm variant: put the prompt back and ask again.
		if err := r.Store.Set(ctx, bc.ConversationID, *pi); err != nil {
			return nil, err
		}
		return &ButtonClickResult{
			Handled:  true,
			Response: "No entendí tu respuesta. Usa los botones: Confirmar, No o Reagendar.",
			Action:   models.ActionWaitInput,
		}, nil
	}
}

// commitBooking performs the irreversible action of the confirmation path.
// A commit-time capacity violation is a retryable conflict: the customer is
// asked to pick again from fresh availability.
func (r *ButtonRouter) commitBooking(ctx context.Context, bc ButtonClickContext, draft models.BookingDraft) (*ButtonClickResult, error) {
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

	if err := r.Jobs.CreateBooking(ctx, job, maxDaily); err != nil {
		if errors.Is(err, jobRepo.ErrCapacityConflict) {
			r.Logger.Warn("booking lost its slot between offer and confirmation",
				zap.String("conversationId", bc.ConversationID),
				zap.String("technicianId", draft.TechnicianID))
			return &ButtonClickResult{
				Handled:  true,
				Response: "Ese horario se acaba de ocupar. Envíanos de nuevo la fecha que te interesa y te mostramos los horarios actualizados.",
				Action:   models.ActionRespond,
			}, nil
		}
		return nil, fmt.Errorf("button router: %w", err)
	}

	if r.Reminders != nil {
		if err := r.Reminders.ScheduleBookingReminder(ctx, job, draft.CustomerPhone); err != nil {
			r.Logger.Warn("failed to schedule booking reminder", zap.Error(err))
		}
	}

	response := fmt.Sprintf("¡Listo! Tu visita quedó agendada para el %s a las %s", job.Date, job.StartTime)
	if draft.TechnicianName != "" {
		response += fmt.Sprintf(" con %s", draft.TechnicianName)
	}
	response += "."
	return &ButtonClickResult{
		Handled:  true,
		Response: response,
		Action:   models.ActionCreateJob,
		Data:     &models.StepData{Job: job},
	}, nil
}

func (r *ButtonRouter) handleServiceSelection(id string, pi *models.PendingInteraction) *ButtonClickResult {
	service := strings.TrimPrefix(strings.TrimPrefix(id, "service_"), "svc_")
	service = strings.ReplaceAll(service, "_", " ")
	if data := pi.Data.ServiceSelection; data != nil && data.PreferredDate != "" {
		return &ButtonClickResult{
			Handled:  true,
			Response: fmt.Sprintf("Perfecto, %s para el %s. Dinos a qué hora te acomoda y buscamos técnico.", service, data.PreferredDate),
			Action:   models.ActionRespond,
		}
	}
	return &ButtonClickResult{
		Handled:  true,
		Response: fmt.Sprintf("Perfecto, %s. ¿Para qué fecha te gustaría agendar la visita?", service),
		Action:   models.ActionRespond,
	}
}

// InferButtonID maps a button title back to a canonical id when the channel
// drops the original id. Keyword matching is deterministic and best-effort:
// titles that match nothing get a slugified placeholder that falls through
// to "unhandled".
func InferButtonID(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "confirmar"), t == "sí", t == "si":
		return "confirm_yes"
	case strings.Contains(t, "reagendar"), strings.Contains(t, "otro horario"):
		return "confirm_reschedule"
	case t == "no", strings.HasPrefix(t, "no,"), strings.HasPrefix(t, "no "):
		return "confirm_no"
	default:
		return "btn_" + slugify(t)
	}
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
