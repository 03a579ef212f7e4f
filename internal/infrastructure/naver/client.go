// Package naver is the HTTP client for the Naver Commerce seller API, the
// external channel planned allocations are pushed to.
package naver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const tokenPath = "/external/v1/oauth2/token"

// Tokens are refreshed this long before their reported expiry.
const tokenExpiryBuffer = 5 * time.Minute

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// Client handles authentication and request signing. Token issuance uses the
// client-credentials grant with an HMAC-SHA256 signature over
// "{clientID}_{timestamp}"; the token is cached in memory until shortly
// before expiry.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenType   string
	expiresAt   time.Time
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		cfg:  cfg,
		http: httpClient,
		now:  time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid access token, refreshing it when missing or about to
// expire. The mutex single-flights refreshes across concurrent runs.
func (c *Client) token(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt.Add(-tokenExpiryBuffer)) {
		return c.tokenType, c.accessToken, nil
	}

	timestamp := c.now().UnixMilli()
	form := url.Values{
		"client_id":          {c.cfg.ClientID},
		"timestamp":          {strconv.FormatInt(timestamp, 10)},
		"client_secret_sign": {c.sign(timestamp)},
		"grant_type":         {"client_credentials"},
		"type":               {"SELLER"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("naver token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", "", fmt.Errorf("naver token request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", "", fmt.Errorf("naver token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", "", fmt.Errorf("naver token response: empty access token")
	}

	c.accessToken = token.AccessToken
	c.tokenType = token.TokenType
	if c.tokenType == "" {
		c.tokenType = "Bearer"
	}
	expiresIn := token.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.expiresAt = c.now().Add(time.Duration(expiresIn) * time.Second)

	return c.tokenType, c.accessToken, nil
}

func (c *Client) sign(timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.ClientSecret))
	fmt.Fprintf(mac, "%s_%d", c.cfg.ClientID, timestamp)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// do sends an authenticated JSON request and fails on any non-2xx status.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) error {
	tokenType, accessToken, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenType+" "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("naver api %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}
