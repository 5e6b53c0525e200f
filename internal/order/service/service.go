// Package service implements the order form sessions: plan-derived budget
// handling, validation, and persistence into the orders collection.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"portfolio_backend/internal/events"
	"portfolio_backend/internal/formflow"
	"portfolio_backend/internal/order/transport"
	"portfolio_backend/internal/plans"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/apperr"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/phone"
	"portfolio_backend/platform/sanitize"
	"portfolio_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgSessionNotFound  = "form session not found"
	msgSubmitInFlight   = "a submission is already in progress"
	msgValidationFailed = "please fill in all required fields correctly"
	msgBudgetRequired   = "please tell us your budget"
	msgSubmitFailed     = "failed to place order"
)

const (
	successDelay   = 3 * time.Second
	sweepInterval  = 10 * time.Minute
	maxSessionIdle = 30 * time.Minute
)

// Service owns the open order form sessions.
type Service struct {
	sessions *formflow.Registry
	store    store.RecordStore
	signals  *signals.Bus
	bus      events.Bus
	catalog  *plans.Catalog
	val      *validator.Validator
	log      *logger.Logger

	// mu guards customBudgets, the per-session budget text a user typed on
	// the custom plan, held while a fixed tier has the field locked.
	mu            sync.Mutex
	customBudgets map[uuid.UUID]string
}

// New creates the order service.
func New(recordStore store.RecordStore, signalBus *signals.Bus, bus events.Bus, catalog *plans.Catalog, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		sessions:      formflow.NewRegistry(),
		store:         recordStore,
		signals:       signalBus,
		bus:           bus,
		catalog:       catalog,
		val:           val,
		log:           log,
		customBudgets: make(map[uuid.UUID]string),
	}
}

// Open starts a new order session for the given plan. Unknown plan ids fall
// back to the custom plan. Fixed-price tiers lock the budget to the tier
// price; only the custom plan leaves it editable.
func (s *Service) Open(ctx context.Context, planID string) transport.SessionResponse {
	plan := s.catalog.ByID(planID)

	budget := ""
	if plan.HasFixedPrice() {
		budget = plan.Price
	}

	var (
		submitted map[string]string
		submitCtx context.Context
	)

	ctrl := formflow.NewController(formflow.Config{
		Defaults: map[string]string{
			transport.FieldPlan:   plan.ID,
			transport.FieldBudget: budget,
		},
		SuccessDelay: successDelay,
		Hooks: formflow.Hooks{
			Validate: s.validateFields,
			Persist: func(ctx context.Context, fields map[string]string) (string, error) {
				submitted, submitCtx = fields, ctx
				s.signals.ShowLoader(signals.LoaderOptions{Text: "Placing your order..."})
				return s.store.CreateRecord(ctx, store.CollectionOrders, s.recordData(fields))
			},
			OnSuccess: func(recordID string) {
				s.signals.HideLoader()
				s.signals.ShowAlert(signals.AlertOptions{
					Kind:    signals.AlertSuccess,
					Title:   "Order received!",
					Message: "Thanks! I'll be in touch within 24 hours.",
				})
				s.publishPlaced(submitCtx, recordID, submitted)
				s.log.Info("order placed", "recordId", recordID, "plan", submitted[transport.FieldPlan])
			},
			OnFailure: func(err error) {
				s.signals.HideLoader()
				s.signals.ShowAlert(signals.AlertOptions{
					Kind:    signals.AlertError,
					Title:   "Something went wrong",
					Message: "Your order could not be placed. Please try again.",
				})
				s.log.StoreError("create", store.CollectionOrders, err)
			},
		},
	})

	id := s.sessions.Add(ctrl)
	return s.sessionResponse(id, ctrl)
}

// ChangePlan switches an open session to another plan and re-derives the
// budget. A budget the user typed for the custom plan survives a switch back
// to custom; switching to a fixed tier always locks the tier price in.
func (s *Service) ChangePlan(id uuid.UUID, planID string) (transport.SessionResponse, error) {
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		return transport.SessionResponse{}, apperr.NotFound(msgSessionNotFound)
	}

	// Leaving the custom plan with a typed budget: keep the text so a later
	// switch back restores it instead of the tier price.
	prev := s.catalog.ByID(ctrl.Field(transport.FieldPlan))
	if !prev.HasFixedPrice() && ctrl.Touched(transport.FieldBudget) {
		s.stashBudget(id, ctrl.Field(transport.FieldBudget))
	}

	plan := s.catalog.ByID(planID)
	if err := ctrl.OverrideField(transport.FieldPlan, plan.ID); err != nil {
		return transport.SessionResponse{}, mapFlowErr(err)
	}

	switch {
	case plan.HasFixedPrice():
		if err := ctrl.OverrideField(transport.FieldBudget, plan.Price); err != nil {
			return transport.SessionResponse{}, mapFlowErr(err)
		}
	default:
		if saved, ok := s.takeBudget(id); ok {
			if err := ctrl.SetField(transport.FieldBudget, saved); err != nil {
				return transport.SessionResponse{}, mapFlowErr(err)
			}
		} else if !ctrl.Touched(transport.FieldBudget) {
			if err := ctrl.OverrideField(transport.FieldBudget, ""); err != nil {
				return transport.SessionResponse{}, mapFlowErr(err)
			}
		}
	}

	return s.sessionResponse(id, ctrl), nil
}

func (s *Service) stashBudget(id uuid.UUID, budget string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customBudgets[id] = budget
}

// takeBudget returns and forgets the stashed budget for a session.
func (s *Service) takeBudget(id uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	budget, ok := s.customBudgets[id]
	if ok {
		delete(s.customBudgets, id)
	}
	return budget, ok
}

func (s *Service) forgetBudgets(ids ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.customBudgets, id)
	}
}

// Session returns the snapshot of an open session.
func (s *Service) Session(id uuid.UUID) (transport.SessionResponse, error) {
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		return transport.SessionResponse{}, apperr.NotFound(msgSessionNotFound)
	}
	return s.sessionResponse(id, ctrl), nil
}

// SetFields applies user edits to an open session. Budget edits are dropped
// while a fixed-price plan is selected; the plan id is never user-editable.
func (s *Service) SetFields(id uuid.UUID, fields map[string]string) (transport.SessionResponse, error) {
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		return transport.SessionResponse{}, apperr.NotFound(msgSessionNotFound)
	}

	plan := s.catalog.ByID(ctrl.Field(transport.FieldPlan))

	for name, value := range fields {
		if !allowedField(name) {
			return transport.SessionResponse{}, apperr.BadRequest(fmt.Sprintf("unknown field %q", name))
		}
		if name == transport.FieldBudget && plan.HasFixedPrice() {
			continue
		}
		if err := ctrl.SetField(name, value); err != nil {
			return transport.SessionResponse{}, mapFlowErr(err)
		}
	}
	return s.sessionResponse(id, ctrl), nil
}

// Submit runs the submit sequence for an open session.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (transport.SubmitResponse, error) {
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		return transport.SubmitResponse{}, apperr.NotFound(msgSessionNotFound)
	}

	if err := ctrl.Submit(ctx); err != nil {
		if appErr, ok := err.(*apperr.Error); ok {
			return transport.SubmitResponse{}, appErr
		}
		if errors.Is(err, formflow.ErrSubmitInFlight) || errors.Is(err, formflow.ErrClosed) {
			return transport.SubmitResponse{}, mapFlowErr(err)
		}
		return transport.SubmitResponse{}, apperr.Wrap(apperr.KindInternal, msgSubmitFailed, err)
	}

	s.forgetBudgets(id)
	return transport.SubmitResponse{
		RecordID: ctrl.LastRecordID(),
		State:    string(ctrl.State()),
	}, nil
}

// Close ends a session.
func (s *Service) Close(id uuid.UUID) {
	s.sessions.Remove(id)
	s.forgetBudgets(id)
}

// StartJanitor sweeps idle sessions until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if swept := s.sessions.Sweep(maxSessionIdle); len(swept) > 0 {
					s.forgetBudgets(swept...)
					s.log.Info("order sessions swept", "count", len(swept))
				}
			}
		}
	}()
}

func (s *Service) validateFields(fields map[string]string) error {
	req := transport.OrderRequest{
		Name:               strings.TrimSpace(fields[transport.FieldName]),
		Email:              strings.TrimSpace(fields[transport.FieldEmail]),
		Phone:              strings.TrimSpace(fields[transport.FieldPhone]),
		ProjectDescription: strings.TrimSpace(fields[transport.FieldDescription]),
		Timeline:           strings.TrimSpace(fields[transport.FieldTimeline]),
		Budget:             strings.TrimSpace(fields[transport.FieldBudget]),
		References:         strings.TrimSpace(fields[transport.FieldReferences]),
		AdditionalInfo:     strings.TrimSpace(fields[transport.FieldExtra]),
	}

	if err := s.val.Struct(req); err != nil {
		s.warn("Missing information", "Please fill in all required fields.")
		return apperr.Validation(msgValidationFailed).WithDetails(invalidFields(err))
	}

	plan := s.catalog.ByID(fields[transport.FieldPlan])
	if !plan.HasFixedPrice() && req.Budget == "" {
		s.warn("Budget needed", "Please tell us your budget for the custom package.")
		return apperr.Validation(msgBudgetRequired)
	}
	return nil
}

func (s *Service) warn(title, message string) {
	s.signals.ShowAlert(signals.AlertOptions{
		Kind:    signals.AlertWarning,
		Title:   title,
		Message: message,
	})
}

func (s *Service) publishPlaced(ctx context.Context, recordID string, fields map[string]string) {
	if s.bus == nil {
		return
	}
	plan := s.catalog.ByID(fields[transport.FieldPlan])
	s.bus.Publish(ctx, events.OrderPlaced{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  recordID,
		Name:      strings.TrimSpace(fields[transport.FieldName]),
		Email:     strings.TrimSpace(fields[transport.FieldEmail]),
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		Budget:    s.effectiveBudget(plan, fields),
	})
}

// effectiveBudget is the budget that actually counts: the tier price for
// fixed-price plans no matter what the session field holds, otherwise the
// user's free-text budget.
func (s *Service) effectiveBudget(plan plans.Plan, fields map[string]string) string {
	if plan.HasFixedPrice() {
		return plan.Price
	}
	return sanitize.Text(fields[transport.FieldBudget])
}

func (s *Service) recordData(fields map[string]string) map[string]any {
	plan := s.catalog.ByID(fields[transport.FieldPlan])
	return map[string]any{
		"name":               sanitize.Text(fields[transport.FieldName]),
		"email":              strings.TrimSpace(fields[transport.FieldEmail]),
		"phone":              phone.NormalizeE164(fields[transport.FieldPhone]),
		"planId":             plan.ID,
		"planName":           plan.Name,
		"budget":             s.effectiveBudget(plan, fields),
		"timeline":           sanitize.Text(fields[transport.FieldTimeline]),
		"projectDescription": sanitize.Text(fields[transport.FieldDescription]),
		"references":         sanitize.Text(fields[transport.FieldReferences]),
		"additionalInfo":     sanitize.Text(fields[transport.FieldExtra]),
	}
}

func (s *Service) sessionResponse(id uuid.UUID, ctrl *formflow.Controller) transport.SessionResponse {
	plan := s.catalog.ByID(ctrl.Field(transport.FieldPlan))
	return transport.SessionResponse{
		SessionID:   id.String(),
		State:       string(ctrl.State()),
		Fields:      ctrl.Fields(),
		BudgetFixed: plan.HasFixedPrice(),
	}
}

func allowedField(name string) bool {
	switch name {
	case transport.FieldName, transport.FieldEmail, transport.FieldPhone,
		transport.FieldDescription, transport.FieldTimeline, transport.FieldBudget,
		transport.FieldReferences, transport.FieldExtra:
		return true
	}
	return false
}

func mapFlowErr(err error) error {
	switch {
	case errors.Is(err, formflow.ErrSubmitInFlight):
		return apperr.Conflict(msgSubmitInFlight)
	case errors.Is(err, formflow.ErrClosed):
		return apperr.NotFound(msgSessionNotFound)
	}
	return err
}

func invalidFields(err error) []string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fields
}
