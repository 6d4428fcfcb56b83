package tenants

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

// Handler exposes the public directory and the platform-admin tenant CRUD.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	directory *Directory
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, directory *Directory) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		directory: directory,
		validator: validator.New(),
	}
}

// MountPublicRoutes registers the unauthenticated directory endpoints.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/universities", h.listUniversities)
	r.Get("/universities/{tenantID}/faculties", h.listFaculties)
	r.Get("/faculties/{facultyID}/courses", h.listCourses)
}

// MountAdminRoutes registers the tenant management endpoints. The caller
// must gate these to platform admins.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{tenantID}", h.get)
	r.Put("/{tenantID}", h.update)
	r.Patch("/{tenantID}/status", h.changeStatus)
}

func (h *Handler) listUniversities(w http.ResponseWriter, r *http.Request) {
	out, err := h.directory.Universities(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"universities": out})
}

func (h *Handler) listFaculties(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad tenant id", shared.ErrValidation))
		return
	}
	out, err := h.directory.Faculties(r.Context(), tenantID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"faculties": out})
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	facultyID, err := uuid.Parse(chi.URLParam(r, "facultyID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad faculty id", shared.ErrValidation))
		return
	}
	out, err := h.directory.Courses(r.Context(), facultyID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"courses": out})
}

type tenantRequest struct {
	Name       string  `json:"name" validate:"required,min=2"`
	Location   string  `json:"location"`
	Domain     string  `json:"domain" validate:"required,fqdn"`
	Plan       string  `json:"plan" validate:"required,oneof=basic premium enterprise"`
	MonthlyFee float64 `json:"monthly_fee" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	t, err := h.service.Create(r.Context(), shared.IdentityFromContext(r.Context()), CreateInput{
		Name:       req.Name,
		Location:   req.Location,
		Domain:     req.Domain,
		Plan:       req.Plan,
		MonthlyFee: req.MonthlyFee,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad tenant id", shared.ErrValidation))
		return
	}
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	items, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tenants": items, "pagination": pagination})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad tenant id", shared.ErrValidation))
		return
	}

	var req tenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	t, err := h.service.Update(r.Context(), shared.IdentityFromContext(r.Context()), id, UpdateInput{
		Name:       req.Name,
		Location:   req.Location,
		Domain:     req.Domain,
		Plan:       req.Plan,
		MonthlyFee: req.MonthlyFee,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active maintenance suspended"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad tenant id", shared.ErrValidation))
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	t, err := h.service.ChangeStatus(r.Context(), shared.IdentityFromContext(r.Context()), id, Status(req.Status))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}
