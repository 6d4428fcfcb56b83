package auth

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

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	loginRate func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. loginRate is applied to every
// credential-bearing endpoint.
func NewHandler(logger *slog.Logger, service *Service, loginRate func(http.Handler) http.Handler) *Handler {
	if loginRate == nil {
		loginRate = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		loginRate: loginRate,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.loginRate)
		r.Post("/student/login", h.loginWithRole(shared.RoleStudent))
		r.Post("/lecturer/login", h.loginWithRole(shared.RoleLecturer))
		r.Post("/supervisor/login", h.loginWithRole(shared.RoleSupervisor))
		r.Post("/faculty-admin/login", h.loginWithRole(shared.RoleFacultyAdmin))
		r.Post("/university-admin/login", h.loginWithRole(shared.RoleUniversityAdmin))
		r.Post("/platform-admin/login", h.loginWithRole(shared.RolePlatformAdmin))
		r.Post("/supervisor/register", h.registerSupervisor)
		r.Post("/student/validate-registration", h.validateRegistration)
		r.Post("/student/register", h.completeRegistration)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.service.Middleware)
		r.Get("/me", h.me)
		r.Post("/change-password", h.changePassword)
	})
}

type loginRequest struct {
	Email     string `json:"email" validate:"omitempty,email"`
	StudentID string `json:"student_id"`
	StaffID   string `json:"staff_id"`
	Password  string `json:"password" validate:"required"`
	TenantID  string `json:"tenant_id" validate:"omitempty,uuid4"`
}

func (h *Handler) loginWithRole(role shared.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
			return
		}

		creds := Credentials{
			Email:     req.Email,
			StudentID: req.StudentID,
			StaffID:   req.StaffID,
			Password:  req.Password,
		}
		if req.TenantID != "" {
			tenantID, err := uuid.Parse(req.TenantID)
			if err != nil {
				httpx.RespondError(w, r, fmt.Errorf("%w: bad tenant_id", shared.ErrValidation))
				return
			}
			creds.TenantID = &tenantID
		}

		result, err := h.service.Login(r.Context(), role, creds)
		if err != nil {
			h.logger.Info("login rejected", "role", role, "error", err)
			httpx.RespondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, loginResponse(result))
	}
}

func loginResponse(result *LoginResult) map[string]any {
	return map[string]any{
		"access_token": result.Token,
		"token_type":   result.TokenType,
		"user":         result.User,
	}
}

type registerSupervisorRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required,min=2"`
	Password        string `json:"password" validate:"required,min=8"`
	CompanyName     string `json:"company_name" validate:"required"`
	Industry        string `json:"industry"`
	Position        string `json:"position"`
	Phone           string `json:"phone"`
	CompanyAddress  string `json:"company_address"`
	YearsExperience int    `json:"years_experience" validate:"gte=0"`
}

func (h *Handler) registerSupervisor(w http.ResponseWriter, r *http.Request) {
	var req registerSupervisorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	result, err := h.service.RegisterSupervisor(r.Context(), SupervisorRegistration{
		Email:           req.Email,
		Name:            req.Name,
		Password:        req.Password,
		CompanyName:     req.CompanyName,
		Industry:        req.Industry,
		Position:        req.Position,
		Phone:           req.Phone,
		CompanyAddress:  req.CompanyAddress,
		YearsExperience: req.YearsExperience,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loginResponse(result))
}

type registrationCheckRequest struct {
	Email     string `json:"email" validate:"required,email"`
	TenantID  string `json:"tenant_id" validate:"required,uuid4"`
	FacultyID string `json:"faculty_id" validate:"required,uuid4"`
	CourseID  string `json:"course_id" validate:"required,uuid4"`
	Password  string `json:"password"`
}

func (r registrationCheckRequest) ids() (tenant, faculty, course uuid.UUID, err error) {
	if tenant, err = uuid.Parse(r.TenantID); err != nil {
		return
	}
	if faculty, err = uuid.Parse(r.FacultyID); err != nil {
		return
	}
	course, err = uuid.Parse(r.CourseID)
	return
}

func (h *Handler) validateRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationCheckRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	tenantID, facultyID, courseID, err := req.ids()
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad identifier", shared.ErrValidation))
		return
	}

	result, err := h.service.ValidateRegistration(r.Context(), req.Email, tenantID, facultyID, courseID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) completeRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationCheckRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}
	if len(req.Password) < 8 {
		httpx.RespondError(w, r, fmt.Errorf("%w: password must be at least 8 characters", shared.ErrValidation))
		return
	}
	tenantID, facultyID, courseID, err := req.ids()
	if err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: bad identifier", shared.ErrValidation))
		return
	}

	result, err := h.service.CompleteRegistration(r.Context(), req.Email, tenantID, facultyID, courseID, req.Password)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loginResponse(result))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, r, shared.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, r, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, r, shared.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, identity)
}
