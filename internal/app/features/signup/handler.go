// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	accountstore "github.com/dalemusser/itemmanager/internal/app/store/accounts"
	profilestore "github.com/dalemusser/itemmanager/internal/app/store/profiles"
	"github.com/dalemusser/itemmanager/internal/app/system/auditlog"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/authutil"
	"github.com/dalemusser/itemmanager/internal/app/system/inputval"
	"github.com/dalemusser/itemmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Accounts   *accountstore.Store
	Profiles   *profilestore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Broker     *authstate.Broker
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, broker *authstate.Broker, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   accountstore.New(db),
		Profiles:   profilestore.New(db),
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Broker:     broker,
	}
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	DisplayName   string
	PasswordRules string
}

func (h *Handler) newForm(r *http.Request) signupFormData {
	return signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign up", "/"),
		PasswordRules: authutil.PasswordRules(),
	}
}

// ServeSignup handles GET /signup.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "signup", h.newForm(r))
}

// HandleSignup handles POST /signup: account, then profile, then session.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	in := inputval.SignupInput{
		Email:       strings.TrimSpace(r.FormValue("email")),
		DisplayName: strings.TrimSpace(r.FormValue("display_name")),
		Password:    r.FormValue("password"),
		Confirm:     r.FormValue("confirm"),
	}

	form := h.newForm(r)
	form.Email = in.Email
	form.DisplayName = in.DisplayName

	if res := inputval.Validate(in); res.HasErrors() {
		form.Error = res.First()
		templates.Render(w, r, "signup", form)
		return
	}
	if err := authutil.ValidateNewPassword(in.Password, in.Confirm); err != nil {
		form.Error = authutil.PasswordMessage(err)
		templates.Render(w, r, "signup", form)
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "A server error occurred.", "/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.Create(ctx, models.Account{
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		AuthMethod:   models.AuthMethodPassword,
		PasswordHash: &hash,
	})
	if errors.Is(err, accountstore.ErrDuplicateEmail) {
		form.Error = "An account with this email already exists."
		templates.Render(w, r, "signup", form)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create account", err, "Could not create your account.", "/signup")
		return
	}

	if _, err := h.Profiles.Create(ctx, models.Profile{
		ID:          acct.ID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		Role:        "user",
	}); err != nil {
		// Roll the account back so the email can be used again.
		if derr := h.Accounts.Delete(ctx, acct.ID); derr != nil {
			h.Log.Error("signup: remove account after profile failure",
				zap.Error(derr), zap.String("account_id", acct.ID.Hex()))
		}
		h.ErrLog.LogServerError(w, r, "create profile", err, "Could not create your account.", "/signup")
		return
	}

	h.AuditLog.Signup(ctx, r, acct.ID, acct.Email, models.AuthMethodPassword)

	if err := h.SessionMgr.SignIn(w, r, acct.ID.Hex()); err != nil {
		h.Log.Error("signup: save session", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.Broker.Publish(authstate.Event{
		Kind:      authstate.SignedIn,
		AccountID: acct.ID.Hex(),
		Email:     acct.Email,
		IP:        ratelimit.ClientIP(r),
	})

	http.Redirect(w, r, "/user-dashboard", http.StatusSeeOther)
}
