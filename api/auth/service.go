package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockBook/internal/logger"
	"StockBook/internal/serviceiface"

	"github.com/google/uuid"
)

type UserSession struct {
	SessionID     string
	UserID        string
	Username      string
	Role          string
	LastLoginTime string
	ClientIP      string
	IsLoggedIn    bool
}

type AuthService struct {
	db       *sql.DB
	maxUsers int
	sessions map[string]*UserSession
	byUser   map[string]*UserSession
	mu       sync.Mutex
	stopCh   chan struct{}
}

func NewAuthService(db *sql.DB, maxUsers int) serviceiface.Service {
	if maxUsers <= 0 {
		maxUsers = 50
	}
	return &AuthService{
		db:       db,
		maxUsers: maxUsers,
		sessions: make(map[string]*UserSession),
		byUser:   make(map[string]*UserSession),
		stopCh:   make(chan struct{}),
	}
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

func (a *AuthService) Login(username, password, clientIP string) (*UserSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, session := range a.sessions {
		if session.Username == username && session.IsLoggedIn {
			session.LastLoginTime = time.Now().Format(time.RFC3339)
			session.ClientIP = clientIP
			logger.Audit(fmt.Sprintf("User %s re-logged in, returning existing session", username))
			return session, nil
		}
	}

	if len(a.sessions) >= a.maxUsers {
		return nil, errors.New("maximum concurrent users reached")
	}

	var userID, name, role string
	err := a.db.QueryRow(`
		SELECT id, username, role
		FROM users
		WHERE username = $1 AND password_hash = crypt($2, password_hash)
	`, username, password).Scan(&userID, &name, &role)
	if err != nil {
		return nil, errors.New("invalid credentials or user not found")
	}

	session := &UserSession{
		SessionID:     generateSessionID(),
		UserID:        userID,
		Username:      name,
		Role:          role,
		LastLoginTime: time.Now().Format(time.RFC3339),
		ClientIP:      clientIP,
		IsLoggedIn:    true,
	}
	a.sessions[session.SessionID] = session
	a.byUser[userID] = session

	logger.Audit("User logged in: " + username)
	return session, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, exists := a.sessions[sessionID]
	if !exists {
		return errors.New("session not found")
	}
	delete(a.sessions, sessionID)
	delete(a.byUser, session.UserID)

	logger.Audit("User logged out: " + session.Username)
	return nil
}

func (a *AuthService) GetActiveSessions() []*UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]*UserSession, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// session expiry can be added here
		}
	}
}

func generateSessionID() string {
	return uuid.New().String()
}

var globalAuthService *AuthService

// SetGlobalAuthService wires the AuthService for in-process callers.
func SetGlobalAuthService(svc *AuthService) {
	globalAuthService = svc
}

// GetActiveSessions returns active sessions from the global AuthService.
func GetActiveSessions() []*UserSession {
	if globalAuthService == nil {
		return nil
	}
	return globalAuthService.GetActiveSessions()
}

// UsernameFor resolves the acting user's name for audit attribution.
// Returns "" when the user has no active session.
func UsernameFor(userID string) string {
	for _, s := range GetActiveSessions() {
		if s.UserID == userID {
			return s.Username
		}
	}
	return ""
}
