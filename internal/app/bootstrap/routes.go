// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	applicationsfeature "github.com/internstack/internstack/internal/app/features/applications"
	authgooglefeature "github.com/internstack/internstack/internal/app/features/authgoogle"
	dashboardfeature "github.com/internstack/internstack/internal/app/features/dashboard"
	errorsfeature "github.com/internstack/internstack/internal/app/features/errors"
	healthfeature "github.com/internstack/internstack/internal/app/features/health"
	homefeature "github.com/internstack/internstack/internal/app/features/home"
	internshipsfeature "github.com/internstack/internstack/internal/app/features/internships"
	loginfeature "github.com/internstack/internstack/internal/app/features/login"
	logoutfeature "github.com/internstack/internstack/internal/app/features/logout"
	profilefeature "github.com/internstack/internstack/internal/app/features/profile"
	signupfeature "github.com/internstack/internstack/internal/app/features/signup"
	verificationfeature "github.com/internstack/internstack/internal/app/features/verification"
	applicationstore "github.com/internstack/internstack/internal/app/store/applications"
	companystore "github.com/internstack/internstack/internal/app/store/companies"
	identitystore "github.com/internstack/internstack/internal/app/store/identities"
	internshipstore "github.com/internstack/internstack/internal/app/store/internships"
	"github.com/internstack/internstack/internal/app/store/oauthstate"
	studentstore "github.com/internstack/internstack/internal/app/store/students"
	"github.com/internstack/internstack/internal/app/system/auth"
	"github.com/internstack/internstack/internal/app/system/identity"
	"github.com/internstack/internstack/internal/domain/models"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// InternStack initializes the session manager with the identity resolver
// as its user fetcher, boots the template engine, applies CSRF protection,
// and mounts feature routers for the three role areas plus the public
// marketplace pages.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	secure := coreCfg.Env == "prod"

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Session user data comes from the identity resolver on each request,
	// so role changes and verification decisions take effect immediately.
	resolver := identity.NewResolver(db, logger)
	fetcher := identity.NewFetcher(resolver, logger)
	sessionMgr.SetUserFetcher(fetcher)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	store, err := buildStorage(context.Background(), appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	identities := identitystore.New(db)
	students := studentstore.New(db)
	companies := companystore.New(db)
	internships := internshipstore.New(db)
	applications := applicationstore.New(db)
	oauthStates := oauthstate.New(db)

	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	loginHandler := loginfeature.NewHandler(sessionMgr, errLog, identities, resolver, fetcher, googleEnabled, logger)
	signupHandler := signupfeature.NewHandler(sessionMgr, errLog, identities, students, companies, resolver, fetcher, logger)
	logoutHandler := logoutfeature.NewHandler(sessionMgr, fetcher, logger)
	googleHandler := authgooglefeature.NewHandler(sessionMgr, errLog, identities, students, resolver, fetcher, oauthStates,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	dashboardHandler := dashboardfeature.NewHandler(errLog, students, companies, internships, applications, logger)
	internshipsHandler := internshipsfeature.NewHandler(errLog, students, companies, internships, applications, logger)
	applicationsHandler := applicationsfeature.NewHandler(errLog, internships, applications, logger)
	profileHandler := profilefeature.NewHandler(errLog, students, companies, store, logger)
	verificationHandler := verificationfeature.NewHandler(errLog, companies, fetcher, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrf.Secure(secure), csrf.Path("/")))

	// Unmatched paths land on the public entry page.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Uploaded resumes, when stored on local disk
	if appCfg.StorageType == "local" {
		prefix := appCfg.StorageLocalURL
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(appCfg.StorageLocalPath))))
	}

	// Landing page
	homeHandler := homefeature.NewHandler(logger)
	r.Get("/", homeHandler.ServeRoot)

	// Shared marketplace pages, gated to the three signed-in roles.
	r.Mount("/internships", internshipsfeature.ListRoutes(internshipsHandler, sessionMgr))
	r.Mount("/internship", internshipsfeature.DetailRoutes(internshipsHandler, sessionMgr))

	// Authentication
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Student area
	r.Route("/student", func(sr chi.Router) {
		sr.Mount("/login", loginfeature.Routes(loginHandler, models.RoleStudents))
		sr.Mount("/signup", signupfeature.Routes(signupHandler, models.RoleStudents))
		sr.Mount("/dashboard", dashboardfeature.StudentRoutes(dashboardHandler, sessionMgr))
		sr.Mount("/profile", profilefeature.StudentRoutes(profileHandler, sessionMgr))
	})
	r.Mount("/my-applications", applicationsfeature.StudentRoutes(applicationsHandler, sessionMgr))

	// Company area
	r.Route("/company", func(cr chi.Router) {
		cr.Mount("/login", loginfeature.Routes(loginHandler, models.RoleCompanies))
		cr.Mount("/signup", signupfeature.Routes(signupHandler, models.RoleCompanies))
		cr.Mount("/dashboard", dashboardfeature.CompanyRoutes(dashboardHandler, sessionMgr))
		cr.Mount("/profile", profilefeature.CompanyRoutes(profileHandler, sessionMgr))
		cr.Mount("/post-internship", internshipsfeature.PostRoutes(internshipsHandler, sessionMgr))
		cr.Mount("/internship", applicationsfeature.ApplicantRoutes(applicationsHandler, sessionMgr))
		cr.Mount("/application", applicationsfeature.StatusRoutes(applicationsHandler, sessionMgr))
	})

	// Admin area
	r.Route("/admin", func(ar chi.Router) {
		ar.Mount("/login", loginfeature.Routes(loginHandler, models.RoleAdmins))
		ar.Mount("/dashboard", dashboardfeature.AdminRoutes(dashboardHandler, sessionMgr))
		ar.Mount("/verifications", verificationfeature.QueueRoutes(verificationHandler, sessionMgr))
		ar.Mount("/company", verificationfeature.DecisionRoutes(verificationHandler, sessionMgr))
	})

	return r, nil
}
