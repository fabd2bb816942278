package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chatbot-api/internal/api/response"
	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/service"
)

const (
	msgDemoSubmitted     = "Demo request submitted successfully"
	msgDemoUpdated       = "Demo request updated successfully"
	msgDemoDeleted       = "Demo request deleted successfully"
	msgDemoNotFound      = "Demo request not found"
	msgDemoRateLimited   = "You have already submitted a demo request recently. Please wait 24 hours before submitting another request."
	msgDemoSubmitFailure = "Internal server error. Please try again later."
	msgInternalError     = "Internal server error"
)

// DemoHandler handles demo request endpoints
type DemoHandler struct {
	demoService *service.DemoService
}

// NewDemoHandler creates a new demo handler
func NewDemoHandler(demoService *service.DemoService) *DemoHandler {
	return &DemoHandler{demoService: demoService}
}

// Submit handles the public demo request form
func (h *DemoHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input domain.DemoSubmission
	if err := decodeJSON(r, &input); err != nil {
		response.Fail(w, decodeStatus(err), err.Error())
		return
	}

	req, err := h.demoService.Submit(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			response.Fail(w, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, domain.ErrRateLimited):
			response.Fail(w, http.StatusTooManyRequests, msgDemoRateLimited)
		default:
			log.Error().Err(err).Msg("Error submitting demo request")
			response.Fail(w, http.StatusInternalServerError, msgDemoSubmitFailure)
		}
		return
	}

	response.Success(w, http.StatusCreated, msgDemoSubmitted, map[string]any{
		"id":          req.ID,
		"submittedAt": req.SubmittedAt,
	})
}

// List handles the admin listing
func (h *DemoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.demoService.List(r.Context(), domain.DemoListQuery{
		Status:    q.Get("status"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		h.writeError(w, err, "Error fetching demo requests")
		return
	}

	response.Page(w, result.Items, result.Pagination)
}

// Get handles fetching one demo request
func (h *DemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.demoService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Error fetching demo request")
		return
	}

	response.Success(w, http.StatusOK, "", req)
}

// Update handles admin status updates
func (h *DemoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.DemoStatusUpdate
	if err := decodeJSON(r, &input); err != nil {
		response.Fail(w, decodeStatus(err), err.Error())
		return
	}

	req, err := h.demoService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeError(w, err, "Error updating demo request")
		return
	}

	response.Success(w, http.StatusOK, msgDemoUpdated, req)
}

// Delete handles removing a demo request
func (h *DemoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.demoService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "Error deleting demo request")
		return
	}

	response.Success(w, http.StatusOK, msgDemoDeleted, nil)
}

func (h *DemoHandler) writeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Fail(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		response.Fail(w, http.StatusNotFound, msgDemoNotFound)
	default:
		log.Error().Err(err).Msg(logMsg)
		response.Fail(w, http.StatusInternalServerError, msgInternalError)
	}
}
