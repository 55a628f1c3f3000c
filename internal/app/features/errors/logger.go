// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with a reference id and renders the matching
// error page. The reference is shown to the user so a report can be matched
// to the log line.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Ref logs msg and err and returns the reference id it logged under.
func (e *ErrorLogger) Ref(r *http.Request, msg string, err error) string {
	ref := uuid.NewString()
	e.log.Error(msg,
		zap.String("ref", ref),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	return ref
}

// LogServerError logs err and renders a 500 page with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	ref := e.Ref(r, logMsg, err)
	if backURL == "" {
		backURL = "/"
	}
	data := newPage(r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
	data.Reference = ref
	render(w, r, data)
}

// LogBadRequest logs err at warn and renders a 400 page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs and renders a 403 page with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, userMsg, backURL string) {
	e.log.Warn(logMsg, zap.String("path", r.URL.Path))
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMXLogServerError logs err and writes an inline banner for HTMX, or the
// full 500 page otherwise.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	if !IsHTMX(r) {
		e.LogServerError(w, r, logMsg, err, userMsg, backURL)
		return
	}
	e.Ref(r, logMsg, err)
	HTMXError(w, r, http.StatusInternalServerError, userMsg, func() {})
}
