package students

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

// Handler exposes student roster endpoints for faculty admins.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers student roster routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.preRegister)
	r.Delete("/{userID}", h.deactivate)
}

type preRegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required,min=2"`
	StudentID   string `json:"student_id" validate:"required,min=2"`
	CourseID    string `json:"course_id" validate:"required,uuid4"`
	Program     string `json:"program"`
	YearOfStudy int    `json:"year_of_study" validate:"gte=1,lte=8"`
}

func (h *Handler) preRegister(w http.ResponseWriter, r *http.Request) {
	var req preRegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad course id", shared.ErrValidation))
		return
	}

	student, err := h.service.PreRegister(r.Context(), shared.IdentityFromContext(r.Context()), PreRegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		StudentID:   req.StudentID,
		CourseID:    courseID,
		Program:     req.Program,
		YearOfStudy: req.YearOfStudy,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, student)
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
	httpx.JSON(w, http.StatusOK, map[string]any{"students": items, "pagination": pagination})
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
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "student deactivated"})
}
