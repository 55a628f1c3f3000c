// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	accountstore "github.com/dalemusser/itemmanager/internal/app/store/accounts"
	profilestore "github.com/dalemusser/itemmanager/internal/app/store/profiles"
	"github.com/dalemusser/itemmanager/internal/app/system/auditlog"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateKey    = "oauth_state"
	stateExpKey = "oauth_state_exp"
	returnKey   = "oauth_return"
	stateTTL    = 10 * time.Minute
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Accounts   *accountstore.Store
	Profiles   *profilestore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Broker     *authstate.Broker

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://items.example.com/auth/google/callback"

	// Endpoint and UserInfoURL default to Google's; tests point them at a
	// local server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	broker *authstate.Broker,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Accounts:     accountstore.New(db),
		Profiles:     profilestore.New(db),
		Log:          logger,
		SessionMgr:   sessionMgr,
		AuditLog:     audit,
		Broker:       broker,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  userInfoURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	// The state lives in the signed session cookie, which the callback
	// request carries back.
	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session cookie invalid, using fresh session", zap.Error(err))
	}
	sess.Values[stateKey] = state
	sess.Values[stateExpKey] = time.Now().Add(stateTTL).Unix()
	sess.Values[returnKey] = query.Get(r, "return")
	if err := sess.Save(r, w); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOnline)
	h.Log.Debug("initiating Google OAuth flow", zap.String("redirect_url", url))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	returnURL, ok := h.consumeState(w, r, r.URL.Query().Get("state"))
	if !ok {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}
	if googleUser.Email == "" || !googleUser.EmailVerified {
		h.Log.Info("Google OAuth: unverified email", zap.String("google_id", googleUser.ID))
		http.Redirect(w, r, "/login?error=email_unverified", http.StatusSeeOther)
		return
	}

	acct, created, err := h.findOrCreateAccount(ctx, googleUser)
	if err != nil {
		h.Log.Error("failed to resolve Google account", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if created {
		h.AuditLog.Signup(ctx, r, acct.ID, acct.Email, models.AuthMethodGoogle)
	}

	if err := h.SessionMgr.SignIn(w, r, acct.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", acct.Email))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}
	h.Broker.Publish(authstate.Event{
		Kind:      authstate.SignedIn,
		AccountID: acct.ID.Hex(),
		Email:     acct.Email,
		IP:        ratelimit.ClientIP(r),
	})

	h.Log.Info("user logged in via Google OAuth",
		zap.String("account_id", acct.ID.Hex()),
		zap.Bool("new_account", created))

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// consumeState checks state against the session and clears it so it cannot
// be replayed.
func (h *Handler) consumeState(w http.ResponseWriter, r *http.Request, state string) (returnURL string, ok bool) {
	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		return "", false
	}
	want, _ := sess.Values[stateKey].(string)
	exp, _ := sess.Values[stateExpKey].(int64)
	returnURL, _ = sess.Values[returnKey].(string)

	delete(sess.Values, stateKey)
	delete(sess.Values, stateExpKey)
	delete(sess.Values, returnKey)
	if err := sess.Save(r, w); err != nil {
		h.Log.Warn("failed to clear OAuth state", zap.Error(err))
	}

	if state == "" || want == "" || state != want {
		return "", false
	}
	if time.Now().Unix() > exp {
		return "", false
	}
	return returnURL, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Account lookup                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateAccount matches by Google subject, then by email (linking the
// subject), and otherwise creates a Google account with a user profile.
func (h *Handler) findOrCreateAccount(ctx context.Context, gu *googleUserInfo) (models.Account, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.GetByGoogleSub(ctx, gu.ID)
	if err == nil {
		return acct, false, nil
	}
	if !errors.Is(err, accountstore.ErrNotFound) {
		return models.Account{}, false, err
	}

	acct, err = h.Accounts.GetByEmail(ctx, gu.Email)
	if err == nil {
		if acct.GoogleSub == "" {
			if err := h.Accounts.LinkGoogle(ctx, acct.ID, gu.ID); err != nil {
				h.Log.Warn("failed to link Google subject",
					zap.Error(err),
					zap.String("account_id", acct.ID.Hex()))
			}
		}
		return acct, false, nil
	}
	if !errors.Is(err, accountstore.ErrNotFound) {
		return models.Account{}, false, err
	}

	acct, err = h.Accounts.Create(ctx, models.Account{
		Email:       gu.Email,
		DisplayName: gu.Name,
		AuthMethod:  models.AuthMethodGoogle,
		GoogleSub:   gu.ID,
	})
	if err != nil {
		return models.Account{}, false, fmt.Errorf("create account: %w", err)
	}
	if _, err := h.Profiles.Create(ctx, models.Profile{
		ID:          acct.ID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		Role:        "user",
	}); err != nil {
		if derr := h.Accounts.Delete(ctx, acct.ID); derr != nil {
			h.Log.Error("remove account after profile failure", zap.Error(derr))
		}
		return models.Account{}, false, fmt.Errorf("create profile: %w", err)
	}
	return acct, true, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
