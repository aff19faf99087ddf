package auth

import (
	"net/http"
	"time"
)

// MockAuth signs everyone in as a local referee. Development only.
type MockAuth struct {
	*sessionStore
	user User
}

// NewMockAuth creates a new mock authentication handler
func NewMockAuth() *MockAuth {
	return &MockAuth{
		sessionStore: newSessionStore(),
		user: User{
			ID:       "dev-user-123",
			Email:    "dev@scorebored.local",
			Name:     "Dev Referee",
			Username: "devref",
			Groups:   []string{"users", RefereeGroup},
		},
	}
}

// LoginHandler auto-creates a session for the development user.
func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	user := m.user
	session := m.create(&user, nil, time.Now().Add(24*time.Hour))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Expires:  session.ExpiresAt,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CallbackHandler is not needed for mock auth
func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	m.destroy(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return m.guard(next)
}
