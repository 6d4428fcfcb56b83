package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/practicheck/practicheck/internal/assessments"
	"github.com/practicheck/practicheck/internal/auth"
	"github.com/practicheck/practicheck/internal/authz"
	"github.com/practicheck/practicheck/internal/courses"
	"github.com/practicheck/practicheck/internal/faculties"
	"github.com/practicheck/practicheck/internal/lecturers"
	"github.com/practicheck/practicheck/internal/logbook"
	"github.com/practicheck/practicheck/internal/shared"
	"github.com/practicheck/practicheck/internal/students"
	"github.com/practicheck/practicheck/internal/tenants"
	"github.com/practicheck/practicheck/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	TenantHandler     *tenants.Handler
	FacultyHandler    *faculties.Handler
	CourseHandler     *courses.Handler
	StudentHandler    *students.Handler
	LecturerHandler   *lecturers.Handler
	AssessmentHandler *assessments.Handler
	LogbookHandler    *logbook.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with Practicheck defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public surface: directory listings and the auth flows.
	if params.TenantHandler != nil {
		r.Route("/directory", params.TenantHandler.MountPublicRoutes)
	}
	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	// Everything below requires a resolved identity.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.Middleware)

		if params.TenantHandler != nil {
			r.Route("/tenants", func(r chi.Router) {
				r.Use(authz.RequireRoles(shared.RolePlatformAdmin))
				params.TenantHandler.MountAdminRoutes(r)
			})
		}
		if params.FacultyHandler != nil {
			r.Route("/faculties", func(r chi.Router) {
				r.Use(authz.RequireRoles(shared.RoleUniversityAdmin))
				params.FacultyHandler.MountRoutes(r)
			})
		}
		if params.CourseHandler != nil {
			r.Route("/courses", func(r chi.Router) {
				r.Use(authz.RequireRoles(shared.RoleFacultyAdmin, shared.RoleUniversityAdmin))
				params.CourseHandler.MountRoutes(r)
			})
		}
		if params.StudentHandler != nil {
			r.Route("/students", func(r chi.Router) {
				r.Use(authz.RequireRoles(shared.RoleFacultyAdmin, shared.RoleUniversityAdmin))
				params.StudentHandler.MountRoutes(r)
			})
		}
		if params.LecturerHandler != nil {
			r.Route("/lecturers", func(r chi.Router) {
				r.Use(authz.RequireRoles(shared.RoleFacultyAdmin, shared.RoleUniversityAdmin))
				params.LecturerHandler.MountRoutes(r)
			})
		}
		if params.AssessmentHandler != nil {
			r.Route("/assessments", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(authz.RequireRoles(shared.RoleStudent))
					params.AssessmentHandler.MountStudentRoutes(r)
				})
				r.Group(func(r chi.Router) {
					r.Use(authz.RequireRoles(shared.RoleFacultyAdmin, shared.RoleUniversityAdmin))
					params.AssessmentHandler.MountAdminRoutes(r)
				})
			})
		}
		if params.LogbookHandler != nil {
			r.Route("/logbook", func(r chi.Router) {
				r.Use(authz.RequireRoles(shared.RoleStudent))
				params.LogbookHandler.MountRoutes(r)
			})
		}
	})

	return r
}
