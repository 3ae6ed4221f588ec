package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"tourbook/internal/checkout"
	"tourbook/internal/models"
	"tourbook/internal/wizard"
)

func (s *HTTPServer) handleStartDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TourID string `json:"tourId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.TourID == "" {
		writeError(w, http.StatusBadRequest, "tourId is required")
		return
	}

	draft, err := s.wizard.StartDraft(r.Context(), body.TourID)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (s *HTTPServer) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.wizard.GetDraft(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleSetSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := s.wizard.SetSchedule(r.Context(), r.PathValue("id"), body.Date, body.Time)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleAdults(w http.ResponseWriter, r *http.Request) {
	s.handleCounter(w, r, s.wizard.AddAdult, s.wizard.RemoveAdult)
}

func (s *HTTPServer) handleChildren(w http.ResponseWriter, r *http.Request) {
	s.handleCounter(w, r, s.wizard.AddChild, s.wizard.RemoveChild)
}

func (s *HTTPServer) handleCounter(
	w http.ResponseWriter,
	r *http.Request,
	add func(ctx context.Context, id string) (*models.BookingDraft, error),
	remove func(ctx context.Context, id string) (*models.BookingDraft, error),
) {
	var body struct {
		Op string `json:"op"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		draft *models.BookingDraft
		err   error
	)
	switch body.Op {
	case "add":
		draft, err = add(r.Context(), r.PathValue("id"))
	case "remove":
		draft, err = remove(r.Context(), r.PathValue("id"))
	default:
		writeError(w, http.StatusBadRequest, "op must be add or remove")
		return
	}
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleChildAge(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child index")
		return
	}

	var body struct {
		Age int `json:"age"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := s.wizard.UpdateChildAge(r.Context(), r.PathValue("id"), index, body.Age)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleSetContact(w http.ResponseWriter, r *http.Request) {
	var body models.CustomerInfo
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := s.wizard.SetContact(r.Context(), r.PathValue("id"), body)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleSetBilling(w http.ResponseWriter, r *http.Request) {
	var body models.BillingAddress
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := s.wizard.SetBilling(r.Context(), r.PathValue("id"), body)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleSetCard(w http.ResponseWriter, r *http.Request) {
	var body models.CardInput
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := s.wizard.SetCard(r.Context(), r.PathValue("id"), body)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleSetRequests(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SpecialRequests string `json:"specialRequests"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := s.wizard.SetSpecialRequests(r.Context(), r.PathValue("id"), body.SpecialRequests)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleSetAgreement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AgreeToTerms bool `json:"agreeToTerms"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := s.wizard.SetAgreement(r.Context(), r.PathValue("id"), body.AgreeToTerms)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleAdvance(w http.ResponseWriter, r *http.Request) {
	draft, err := s.wizard.Advance(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleBack(w http.ResponseWriter, r *http.Request) {
	draft, err := s.wizard.Back(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := s.wizard.Quote(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeWizardError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if s.submitLimit > 0 {
		allowed, err := s.drafts.CheckRateLimit(r.Context(), "submit:"+id, s.submitLimit, s.submitWindow)
		if err == nil && !allowed {
			writeError(w, http.StatusTooManyRequests, "too many submission attempts")
			return
		}
	}

	draft, err := s.wizard.Submit(r.Context(), id)
	if err != nil {
		s.writeWizardError(w, draft, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// writeWizardError maps wizard errors onto HTTP statuses. Errors that carry
// draft state (a blocked step, a refused submit) return the draft so the
// client can render the attached messages.
func (s *HTTPServer) writeWizardError(w http.ResponseWriter, draft *models.BookingDraft, err error) {
	switch {
	case errors.Is(err, wizard.ErrDraftNotFound):
		writeError(w, http.StatusNotFound, "draft not found")
	case errors.Is(err, wizard.ErrTourNotFound):
		writeError(w, http.StatusNotFound, "tour not found")
	case errors.Is(err, wizard.ErrInvalidDate),
		errors.Is(err, wizard.ErrPastDate),
		errors.Is(err, wizard.ErrUnknownStartTime),
		errors.Is(err, wizard.ErrChildIndex):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrStepBlocked),
		errors.Is(err, wizard.ErrCannotSubmit),
		errors.Is(err, wizard.ErrTermsNotAccepted):
		if draft != nil {
			writeJSON(w, http.StatusUnprocessableEntity, draft)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, checkout.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "a submission is already in progress")
	default:
		s.logger.Error().Err(err).Msg("wizard handler error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
