// Package errors renders user-facing error pages and logs the internal
// cause. Handlers call the ErrorLogger methods instead of pairing a zap
// call with a bare http.Error.
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// pageData is the view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
}

// ErrorLogger pairs structured logging with error page rendering so
// handlers report failures in one call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs the internal error and renders a 500 page with the
// user-facing message. err may be nil when the failure has no wrapped cause.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, internal string, err error, userMsg, backURL string) {
	e.log.Error(internal,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs the problem and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, internal string, err error, userMsg, backURL string) {
	e.log.Warn(internal,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogNotFound logs the miss and renders a 404 page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, internal string, err error, userMsg, backURL string) {
	e.log.Warn(internal,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	RenderNotFound(w, r, userMsg, backURL)
}

// LogForbidden logs the denial and renders a 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, internal string, err error, userMsg, backURL string) {
	e.log.Warn(internal,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMXLogServerError logs the internal error and writes an inline alert
// fragment for HTMX swap targets instead of a full page.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, internal string, err error, userMsg, backURL string) {
	e.log.Error(internal,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	renderFragment(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// HTMXLogBadRequest logs the problem and writes an inline alert fragment.
func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, internal string, err error, userMsg, backURL string) {
	e.log.Warn(internal,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	renderFragment(w, r, http.StatusBadRequest, userMsg, backURL)
}

// HTMXLogForbidden logs the denial and writes an inline alert fragment.
func (e *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, internal string, err error, userMsg, backURL string) {
	e.log.Warn(internal,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	renderFragment(w, r, http.StatusForbidden, userMsg, backURL)
}

func renderFragment(w http.ResponseWriter, r *http.Request, status int, msg, backURL string) {
	w.WriteHeader(status)
	templates.Render(w, r, "error_fragment", pageData{
		Message: msg,
		BackURL: backURL,
	})
}
