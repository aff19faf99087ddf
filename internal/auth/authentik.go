package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// RefereeGroup is the group allowed to change the score.
const RefereeGroup = "referees"

const sessionCookie = "session_id"

// AuthentikConfig holds the configuration for Authentik OAuth2/OIDC
type AuthentikConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// User represents an authenticated user
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// Session represents a user session
type Session struct {
	ID        string
	User      *User
	Token     *oauth2.Token
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthProvider is a common interface for authentication providers
type AuthProvider interface {
	LoginHandler(w http.ResponseWriter, r *http.Request)
	CallbackHandler(w http.ResponseWriter, r *http.Request)
	LogoutHandler(w http.ResponseWriter, r *http.Request)
	Middleware(next http.HandlerFunc) http.HandlerFunc
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

func (s *sessionStore) create(user *User, token *oauth2.Token, expires time.Time) *Session {
	session := &Session{
		ID:        generateSessionID(),
		User:      user,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// lookup returns the live session named by the request cookie. Expired
// sessions are dropped.
func (s *sessionStore) lookup(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}

	s.mu.RLock()
	session, ok := s.sessions[cookie.Value]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
		return nil
	}
	return session
}

func (s *sessionStore) destroy(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// guard resolves the session and lets only referees through. API callers
// get a status code, browsers are sent to the login page.
func (s *sessionStore) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.lookup(r)
		if session == nil {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		if !IsReferee(session.User) {
			logger.Warn("Rejected non-referee", "user", session.User.Username, "path", r.URL.Path)
			http.Error(w, "Forbidden: referee access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), session.User)))
	}
}

// AuthentikAuth manages authentication with Authentik
type AuthentikAuth struct {
	*sessionStore
	config       *AuthentikConfig
	oauth2Config *oauth2.Config
	httpClient   *http.Client
}

// NewAuthentikAuth creates a new Authentik authentication handler
func NewAuthentikAuth(config *AuthentikConfig) *AuthentikAuth {
	if len(config.Scopes) == 0 {
		config.Scopes = []string{"openid", "profile", "email"}
	}
	base := strings.TrimSuffix(config.BaseURL, "/")

	return &AuthentikAuth{
		sessionStore: newSessionStore(),
		config:       config,
		oauth2Config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/application/o/authorize/",
				TokenURL: base + "/application/o/token/",
			},
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LoginHandler initiates the OAuth2 login flow
func (a *AuthentikAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := generateState()

	// CSRF state, valid for five minutes
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler handles the OAuth2 callback from Authentik
func (a *AuthentikAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, a.httpClient)
	token, err := a.oauth2Config.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		logger.Error("Failed to exchange token", "error", err)
		http.Error(w, "Failed to exchange token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	user, err := a.getUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info", "error", err)
		http.Error(w, "Failed to get user info: "+err.Error(), http.StatusInternalServerError)
		return
	}

	session := a.create(user, token, token.Expiry)
	logger.Info("User logged in", "user", user.Username, "referee", IsReferee(user))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.Expiry,
	})
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler handles user logout
func (a *AuthentikAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	a.destroy(w, r)
	logoutURL := fmt.Sprintf("%s/application/o/scorebored/end-session/", strings.TrimSuffix(a.config.BaseURL, "/"))
	http.Redirect(w, r, logoutURL, http.StatusSeeOther)
}

// Middleware protects the scoreboard controls.
func (a *AuthentikAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return a.guard(next)
}

func (a *AuthentikAuth) getUserInfo(ctx context.Context, token *oauth2.Token) (*User, error) {
	userInfoURL := strings.TrimSuffix(a.config.BaseURL, "/") + "/application/o/userinfo/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get user info: %s - %s", resp.Status, string(body))
	}

	var userInfo struct {
		Sub               string   `json:"sub"`
		Email             string   `json:"email"`
		Name              string   `json:"name"`
		PreferredUsername string   `json:"preferred_username"`
		Groups            []string `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, err
	}

	return &User{
		ID:       userInfo.Sub,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Username: userInfo.PreferredUsername,
		Groups:   userInfo.Groups,
	}, nil
}

type userKey struct{}

// WithUser attaches user to ctx.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the user stored by WithUser, or nil.
func UserFrom(ctx context.Context) *User {
	user, _ := ctx.Value(userKey{}).(*User)
	return user
}

// GetUser retrieves the authenticated user from the request context
func GetUser(r *http.Request) *User {
	return UserFrom(r.Context())
}

// IsReferee reports whether user may control the scoreboard. Admins count
// as referees.
func IsReferee(user *User) bool {
	if user == nil {
		return false
	}
	for _, group := range user.Groups {
		if group == RefereeGroup || group == "admins" {
			return true
		}
	}
	return false
}

func generateState() string {
	return randomToken()
}

func generateSessionID() string {
	return randomToken()
}

func randomToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
