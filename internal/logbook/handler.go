package logbook

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

// Handler exposes the student logbook endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers logbook routes. The caller gates them to students.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{entryID}", h.update)
}

type entryRequest struct {
	EntryDate    string `json:"entry_date" validate:"required,datetime=2006-01-02"`
	Activities   string `json:"activities" validate:"required,min=10,max=5000"`
	SkillsGained string `json:"skills_gained" validate:"max=2000"`
	Challenges   string `json:"challenges" validate:"max=2000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	date, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad entry_date", shared.ErrValidation))
		return
	}

	entry, err := h.service.Create(r.Context(), shared.IdentityFromContext(r.Context()), EntryInput{
		EntryDate:    date,
		Activities:   req.Activities,
		SkillsGained: req.SkillsGained,
		Challenges:   req.Challenges,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad entry id", shared.ErrValidation))
		return
	}

	var req entryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	entry, err := h.service.Update(r.Context(), shared.IdentityFromContext(r.Context()), id, EntryInput{
		Activities:   req.Activities,
		SkillsGained: req.SkillsGained,
		Challenges:   req.Challenges,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.RespondError(w, r, fmt.Errorf("%w: bad from date", shared.ErrValidation))
			return
		}
		from = &d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.RespondError(w, r, fmt.Errorf("%w: bad to date", shared.ErrValidation))
			return
		}
		to = &d
	}

	entries, err := h.service.List(r.Context(), shared.IdentityFromContext(r.Context()), from, to)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}
