package lecturers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/platform/httpx"
	"github.com/practicheck/practicheck/internal/shared"
)

// Handler exposes lecturer management endpoints for faculty admins.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers lecturer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.provision)
	r.Delete("/{userID}", h.deactivate)
}

type provisionRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name" validate:"required,min=2"`
	StaffID        string `json:"staff_id" validate:"required,min=2"`
	Department     string `json:"department"`
	Specialization string `json:"specialization"`
	OfficeLocation string `json:"office_location"`
	MaxStudents    int    `json:"max_students" validate:"required,gte=1,lte=100"`
}

func (h *Handler) provision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	lecturer, err := h.service.Provision(r.Context(), shared.IdentityFromContext(r.Context()), ProvisionInput{
		Email:          req.Email,
		Name:           req.Name,
		StaffID:        req.StaffID,
		Department:     req.Department,
		Specialization: req.Specialization,
		OfficeLocation: req.OfficeLocation,
		MaxStudents:    req.MaxStudents,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lecturer)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())

	facultyID, err := uuid.Parse(r.URL.Query().Get("faculty_id"))
	if err != nil {
		if identity != nil && identity.FacultyID != nil {
			facultyID = *identity.FacultyID
		} else {
			httpx.RespondError(w, r, fmt.Errorf("%w: faculty_id query parameter required", shared.ErrValidation))
			return
		}
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	items, pagination, err := h.service.List(r.Context(), identity, facultyID, page, perPage)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lecturers": items, "pagination": pagination})
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad user id", shared.ErrValidation))
		return
	}
	if err := h.service.Deactivate(r.Context(), shared.IdentityFromContext(r.Context()), userID); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "lecturer deactivated"})
}
