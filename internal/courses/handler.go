package courses

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/platform/httpx"
	"github.com/practicheck/practicheck/internal/shared"
)

// Handler exposes course management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers course routes. The caller gates them to faculty and
// university admins.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{courseID}", h.update)
	r.Delete("/{courseID}", h.deactivate)
}

type createRequest struct {
	FacultyID     string `json:"faculty_id" validate:"required,uuid4"`
	Name          string `json:"name" validate:"required,min=2"`
	Code          string `json:"code" validate:"required,alphanum,min=2,max=10"`
	DurationYears int    `json:"duration_years" validate:"gte=1,lte=8"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	facultyID, err := uuid.Parse(req.FacultyID)
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad faculty id", shared.ErrValidation))
		return
	}

	c, err := h.service.Create(r.Context(), shared.IdentityFromContext(r.Context()), CreateInput{
		FacultyID:     facultyID,
		Name:          req.Name,
		Code:          req.Code,
		DurationYears: req.DurationYears,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	facultyID, err := uuid.Parse(r.URL.Query().Get("faculty_id"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: faculty_id query parameter required", shared.ErrValidation))
		return
	}
	out, err := h.service.List(r.Context(), shared.IdentityFromContext(r.Context()), facultyID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"courses": out})
}

type updateRequest struct {
	Name          string `json:"name" validate:"required,min=2"`
	DurationYears int    `json:"duration_years" validate:"gte=1,lte=8"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad course id", shared.ErrValidation))
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	c, err := h.service.Update(r.Context(), shared.IdentityFromContext(r.Context()), id, UpdateInput{
		Name:          req.Name,
		DurationYears: req.DurationYears,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad course id", shared.ErrValidation))
		return
	}
	if err := h.service.Deactivate(r.Context(), shared.IdentityFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "course deactivated"})
}
