package faculties

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

// Handler exposes faculty management endpoints for university admins.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers faculty routes. The caller gates them to university
// admins.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{facultyID}", h.get)
	r.Put("/{facultyID}", h.update)
	r.Delete("/{facultyID}", h.deactivate)
}

type createRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Code        string `json:"code" validate:"required,alphanum,min=2,max=10"`
	Description string `json:"description"`
	AdminEmail  string `json:"admin_email" validate:"required,email"`
	AdminName   string `json:"admin_name" validate:"required,min=2"`
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

	faculty, admin, err := h.service.Create(r.Context(), shared.IdentityFromContext(r.Context()), CreateInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		AdminEmail:  req.AdminEmail,
		AdminName:   req.AdminName,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"faculty": faculty, "admin": admin})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context(), shared.IdentityFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"faculties": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "facultyID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad faculty id", shared.ErrValidation))
		return
	}
	f, err := h.service.Get(r.Context(), shared.IdentityFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

type updateRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "facultyID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad faculty id", shared.ErrValidation))
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

	f, err := h.service.Update(r.Context(), shared.IdentityFromContext(r.Context()), id, UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "facultyID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad faculty id", shared.ErrValidation))
		return
	}
	if err := h.service.Deactivate(r.Context(), shared.IdentityFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "faculty deactivated"})
}
