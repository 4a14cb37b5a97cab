package aria

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marketplace/metronome/internal/domain/identity"
)

const defaultTimeout = 5 * time.Second

// Client talks to the external identity service ("aria"). The caller's raw
// Authorization header value is forwarded verbatim on every call. Any
// transport or decoding failure is folded into a credential rejection rather
// than surfaced as a distinct error: the gate fails closed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
}

type profileResponse struct {
	Role string `json:"role"`
}

// Authenticate validates the credential against GET {base}/users/validate.
// A missing credential is an authentication failure, not a distinct error.
func (c *Client) Authenticate(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", identity.ErrInvalidCredential
	}

	var out validateResponse
	if err := c.get(ctx, c.baseURL+"/users/validate", credential, &out); err != nil {
		return "", identity.ErrInvalidCredential
	}
	if !out.Valid {
		return "", identity.ErrInvalidCredential
	}
	return out.UserID, nil
}

// Authorize resolves the subject's role via GET {base}/users/profile/{userId}.
func (c *Client) Authorize(ctx context.Context, credential, userID string) (string, error) {
	var out profileResponse
	if err := c.get(ctx, c.baseURL+"/users/profile/"+userID, credential, &out); err != nil {
		return "", fmt.Errorf("aria: profile lookup: %w", err)
	}
	return out.Role, nil
}

func (c *Client) get(ctx context.Context, url, credential string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("aria: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
