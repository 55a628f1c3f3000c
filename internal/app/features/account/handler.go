// internal/app/features/account/handler.go
package account

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	accountstore "github.com/dalemusser/itemmanager/internal/app/store/accounts"
	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	profilestore "github.com/dalemusser/itemmanager/internal/app/store/profiles"
	"github.com/dalemusser/itemmanager/internal/app/system/accountdeletion"
	"github.com/dalemusser/itemmanager/internal/app/system/auditlog"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgConfirmDelete = "Please confirm deletion"

// Deleter removes an account and everything it owns.
// *accountdeletion.Deleter satisfies it.
type Deleter interface {
	Delete(ctx context.Context, accountID primitive.ObjectID) (int, error)
}

type Handler struct {
	Deleter    Deleter
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Broker     *authstate.Broker
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, broker *authstate.Broker, logger *zap.Logger) *Handler {
	return &Handler{
		Deleter: accountdeletion.New(
			itemstore.New(db),
			profilestore.New(db),
			accountstore.New(db),
			logger,
		),
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Broker:     broker,
		Log:        logger,
	}
}

type deleteData struct {
	viewdata.BaseVM
	Error string
	Email string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, email, errMsg string, status int) {
	data := deleteData{
		BaseVM: viewdata.NewBaseVM(r, "Delete account", "/user-dashboard"),
		Error:  errMsg,
		Email:  email,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "delete_account", data)
}

// ServeDelete handles GET /delete-account.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, u.Email, "", http.StatusOK)
}

// HandleDelete handles POST /delete-account. The session is only cleared
// once the account itself is gone.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/delete-account")
		return
	}
	if r.PostFormValue("confirm") != "yes" {
		h.render(w, r, u.Email, msgConfirmDelete, http.StatusBadRequest)
		return
	}

	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad session user id", err, "Your session is invalid. Please log in again.", "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Deleter.Delete(ctx, id)
	if err != nil {
		step := "unknown"
		var se *accountdeletion.StepError
		if errors.As(err, &se) {
			step = se.Step
		}
		auditCtx, auditCancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
		h.AuditLog.AccountDeleteFailed(auditCtx, r, id, step, err)
		auditCancel()
		h.Log.Error("account deletion failed",
			zap.Error(err),
			zap.String("account_id", u.ID),
			zap.String("step", step),
			zap.Int("items_deleted", n))
		if r.Context().Err() != nil {
			return
		}
		h.render(w, r, u.Email, "Failed to delete account: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign out after account deletion", zap.Error(err))
	}
	h.Broker.Publish(authstate.Event{
		Kind:      authstate.AccountDeleted,
		AccountID: u.ID,
		Email:     u.Email,
		IP:        ratelimit.ClientIP(r),
	})

	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}
