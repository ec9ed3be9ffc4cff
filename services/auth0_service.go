package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meridian-ca/meridian-ca-api/config"
)

// Sentinel errors for the enumerated identity-provider failures callers are
// expected to map to specific user-facing messages
var (
	ErrUserNotFound = errors.New("no account exists for this email address")
	ErrInvalidEmail = errors.New("invalid email address")
)

// Auth0UserInfo represents the user information returned from Auth0's /userinfo endpoint
type Auth0UserInfo struct {
	Sub     string `json:"sub"` // Auth0 user ID
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Auth0Service handles interactions with the Auth0 API
type Auth0Service struct {
	domain     string
	clientID   string
	httpClient *http.Client
}

// NewAuth0Service creates a new Auth0 service instance
func NewAuth0Service(cfg *config.Config) *Auth0Service {
	return &Auth0Service{
		domain:   cfg.Auth0Domain,
		clientID: cfg.Auth0ClientID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// baseURL returns the Auth0 API base URL. If the domain already includes a
// protocol (for testing against httptest servers), it is used as-is.
func (s *Auth0Service) baseURL() string {
	if strings.HasPrefix(s.domain, "http://") || strings.HasPrefix(s.domain, "https://") {
		return s.domain
	}
	return "https://" + s.domain
}

// GetUserInfo fetches user information from Auth0's /userinfo endpoint.
// accessToken is the JWT access token from the Authorization header.
func (s *Auth0Service) GetUserInfo(accessToken string) (*Auth0UserInfo, error) {
	url := fmt.Sprintf("%s/userinfo", s.baseURL())

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo Auth0UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return &userInfo, nil
}

// SendPasswordResetEmail asks Auth0 to dispatch a password-reset email for the
// given address via the database connection's change_password endpoint.
func (s *Auth0Service) SendPasswordResetEmail(email string) error {
	url := fmt.Sprintf("%s/dbconnections/change_password", s.baseURL())

	payload, err := json.Marshal(map[string]string{
		"client_id":  s.clientID,
		"email":      email,
		"connection": "Username-Password-Authentication",
	})
	if err != nil {
		return fmt.Errorf("failed to encode change_password request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call change_password endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	msg := strings.ToLower(string(body))
	switch {
	case resp.StatusCode == http.StatusNotFound || strings.Contains(msg, "user does not exist"):
		return ErrUserNotFound
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(msg, "email"):
		return ErrInvalidEmail
	default:
		return fmt.Errorf("change_password endpoint returned status %d: %s", resp.StatusCode, string(body))
	}
}
