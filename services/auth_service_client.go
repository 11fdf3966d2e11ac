package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

// AuthServiceClient resolves access tokens against the hosted auth provider
// and caches the resolved user ids.
type AuthServiceClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	TTL     time.Duration
	Now     func() time.Time

	cache *lru.Cache
}

type cachedUser struct {
	userID  string
	expires time.Time
}

// AuthUser is the subset of the provider's /auth/v1/user answer we use.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func NewAuthServiceClient(baseURL, apiKey string, cacheSize int, ttl time.Duration) (*AuthServiceClient, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("auth cache: %w", err)
	}
	return &AuthServiceClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		TTL:   ttl,
		Now:   time.Now,
		cache: cache,
	}, nil
}

// ResolveUser returns the user id that owns accessToken.
func (c *AuthServiceClient) ResolveUser(ctx context.Context, accessToken string) (string, error) {
	if v, ok := c.cache.Get(accessToken); ok {
		entry := v.(cachedUser)
		if c.Now().Before(entry.expires) {
			return entry.userID, nil
		}
		c.cache.Remove(accessToken)
	}

	url := fmt.Sprintf("%s/auth/v1/user", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		logrus.Warnf("[AUTH] /auth/v1/user returned %d: %.200s", resp.StatusCode, string(body))
		return "", fmt.Errorf("auth validation failed: %d", resp.StatusCode)
	}

	var out AuthUser
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("auth validation failed: empty user id")
	}

	c.cache.Add(accessToken, cachedUser{userID: out.ID, expires: c.Now().Add(c.TTL)})
	return out.ID, nil
}
