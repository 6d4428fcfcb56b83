package assessments

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/platform/httpx"
	"github.com/practicheck/practicheck/internal/shared"
)

// Handler exposes assessment request endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountStudentRoutes registers the student-facing endpoints.
func (h *Handler) MountStudentRoutes(r chi.Router) {
	r.Get("/", h.listMine)
	r.Post("/", h.create)
}

// MountAdminRoutes registers the faculty-admin endpoints.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/pending", h.listPending)
	r.Post("/{requestID}/assign", h.assign)
}

type createRequest struct {
	AssessmentType string `json:"assessment_type" validate:"required,oneof=midterm final supervision"`
	PreferredDate  string `json:"preferred_date" validate:"omitempty,datetime=2006-01-02"`
	Location       string `json:"location" validate:"required,min=2"`
	Notes          string `json:"notes" validate:"max=2000"`
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

	in := CreateInput{
		AssessmentType: req.AssessmentType,
		Location:       req.Location,
		Notes:          req.Notes,
	}
	if req.PreferredDate != "" {
		date, err := time.Parse("2006-01-02", req.PreferredDate)
		if err != nil {
			httpx.RespondError(w, r, fmt.Errorf("%w: bad preferred_date", shared.ErrValidation))
			return
		}
		in.PreferredDate = &date
	}

	created, err := h.service.Create(r.Context(), shared.IdentityFromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListForStudent(r.Context(), shared.IdentityFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": out})
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
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

	out, err := h.service.ListPending(r.Context(), identity, facultyID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": out})
}

type assignRequest struct {
	LecturerID string `json:"lecturer_id" validate:"required,uuid4"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad request id", shared.ErrValidation))
		return
	}

	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	lecturerID, err := uuid.Parse(req.LecturerID)
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad lecturer id", shared.ErrValidation))
		return
	}

	assigned, err := h.service.Assign(r.Context(), shared.IdentityFromContext(r.Context()), requestID, lecturerID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assigned)
}
