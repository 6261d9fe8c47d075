package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/duckbook/duckbook/backend/config"
	"github.com/duckbook/duckbook/backend/models"
)

const (
	SessionCookieName = "duckbook_session"
	sessionLifetime   = 24 * time.Hour
)

// SessionService issues and validates HMAC-signed session cookies.
type SessionService struct {
	config *config.WebAppConfig
}

func NewSessionService(cfg *config.WebAppConfig) *SessionService {
	return &SessionService{config: cfg}
}

// CreateSession signs a session for the user and sets the cookie.
func (s *SessionService) CreateSession(c *fiber.Ctx, userSession *models.UserSession) error {
	userSession.ExpiresAt = time.Now().Add(sessionLifetime)

	sessionData, err := json.Marshal(userSession)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	signedSession, err := s.signData(sessionData)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    signedSession,
		Path:     "/",
		MaxAge:   int(sessionLifetime / time.Second),
		Secure:   s.config.Environment == "production",
		HTTPOnly: true,
		SameSite: "Lax",
	})

	slog.Info("Session created",
		slog.String("type", "http"),
		slog.Int64("user_id", userSession.UserID),
		slog.String("username", userSession.Username))
	return nil
}

// GetSession retrieves and validates the session from the request.
func (s *SessionService) GetSession(c *fiber.Ctx) (*models.UserSession, error) {
	sessionCookie := c.Cookies(SessionCookieName)
	if sessionCookie == "" {
		return nil, fmt.Errorf("no session cookie found")
	}

	sessionData, err := s.verifyAndDecodeData(sessionCookie)
	if err != nil {
		return nil, fmt.Errorf("invalid session signature: %w", err)
	}

	var userSession models.UserSession
	if err := json.Unmarshal(sessionData, &userSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(userSession.ExpiresAt) {
		s.DestroySession(c)
		return nil, fmt.Errorf("session expired")
	}

	return &userSession, nil
}

// DestroySession clears the session cookie.
func (s *SessionService) DestroySession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.config.Environment == "production",
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// signData signs data with HMAC-SHA256 and base64 encodes data+signature.
func (s *SessionService) signData(data []byte) (string, error) {
	secret := s.config.SessionSecret()
	if secret == "" {
		return "", fmt.Errorf("session secret not configured")
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	combined := append(data, h.Sum(nil)...)

	return base64.URLEncoding.EncodeToString(combined), nil
}

// verifyAndDecodeData checks the trailing 32-byte signature and
// returns the original data.
func (s *SessionService) verifyAndDecodeData(encodedData string) ([]byte, error) {
	secret := s.config.SessionSecret()
	if secret == "" {
		return nil, fmt.Errorf("session secret not configured")
	}

	combined, err := base64.URLEncoding.DecodeString(encodedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	if len(combined) < sha256.Size {
		return nil, fmt.Errorf("invalid data length")
	}

	data := combined[:len(combined)-sha256.Size]
	receivedSignature := combined[len(combined)-sha256.Size:]

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	if !hmac.Equal(receivedSignature, h.Sum(nil)) {
		return nil, fmt.Errorf("signature verification failed")
	}

	return data, nil
}
