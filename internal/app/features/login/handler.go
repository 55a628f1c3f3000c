// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	accountstore "github.com/dalemusser/itemmanager/internal/app/store/accounts"
	"github.com/dalemusser/itemmanager/internal/app/system/auditlog"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/authutil"
	"github.com/dalemusser/itemmanager/internal/app/system/inputval"
	"github.com/dalemusser/itemmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Accounts      *accountstore.Store
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	Limiter       *ratelimit.LoginLimiter
	Broker        *authstate.Broker
	GoogleEnabled bool // True if Google OAuth is configured
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	limiter *ratelimit.LoginLimiter,
	broker *authstate.Broker,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Accounts:      accountstore.New(db),
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		Limiter:       limiter,
		Broker:        broker,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log in", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	in := inputval.LoginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	ret := strings.TrimSpace(r.FormValue("return"))

	if res := inputval.Validate(in); res.HasErrors() {
		h.renderFormWithError(w, r, res.First(), in.Email, ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, kind, msg := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, in.Email, kind)
			h.renderFormWithError(w, r, msg, in.Email, ret)
			return
		}
	}

	/*── look-up account by folded email ─────────────────────────────────────*/

	acct, err := h.Accounts.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, accountstore.ErrNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, in.Email)
		h.renderFormWithError(w, r, "No account found for that email.", in.Email, ret)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find account", err, "A server error occurred.", "/login")
		return
	}

	/*── route by auth method ────────────────────────────────────────────────*/

	if acct.AuthMethod == models.AuthMethodGoogle || acct.PasswordHash == nil {
		if h.GoogleEnabled {
			dest := "/auth/google"
			if ret != "" {
				dest += "?return=" + ret
			}
			http.Redirect(w, r, dest, http.StatusSeeOther)
			return
		}
		h.renderFormWithError(w, r, "This account uses Google sign-in, which is not configured.", in.Email, ret)
		return
	}

	if !authutil.CheckPassword(in.Password, *acct.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, acct.ID, in.Email)
		h.renderFormWithError(w, r, "Incorrect password.", in.Email, ret)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.createSessionAndRedirect(w, r, acct, ret)
}

// createSessionAndRedirect signs the account in and redirects to the
// destination.
func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, acct models.Account, returnURL string) {
	if err := h.SessionMgr.SignIn(w, r, acct.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", acct.Email))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", acct.Email, returnURL)
		return
	}

	h.Broker.Publish(authstate.Event{
		Kind:      authstate.SignedIn,
		AccountID: acct.ID.Hex(),
		Email:     acct.Email,
		IP:        ratelimit.ClientIP(r),
	})

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, returnURL string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     returnURL,
		GoogleEnabled: h.GoogleEnabled,
	})
}
