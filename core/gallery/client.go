package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"backline/logger"
	"backline/model"
)

// TokenStore persists the OAuth refresh token for the image host.
type TokenStore interface {
	GetToken(ctx context.Context, provider string) (*model.GalleryToken, error)
	SaveToken(ctx context.Context, token *model.GalleryToken) error
}

// ListingCache is a short-lived cache for full album listings.
type ListingCache interface {
	GetListing(ctx context.Context, key string) ([]model.GalleryImage, bool)
	SetListing(ctx context.Context, key string, images []model.GalleryImage)
}

// Client talks to the external image host. Access tokens are minted from the
// stored refresh token and kept in memory until they expire; the refresh
// token row is rewritten whenever the host rotates it.
type Client struct {
	http     *http.Client
	baseURL  string
	provider string
	tokens   TokenStore
	cache    ListingCache
	// backoff holds the pause before each retry; a listing gets
	// len(backoff)+1 attempts in total.
	backoff []time.Duration

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient wires a gallery client. cache may be nil.
func NewClient(baseURL, provider string, tokens TokenStore, cache ListingCache) *Client {
	return &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		provider: provider,
		tokens:   tokens,
		cache:    cache,
		backoff:  []time.Duration{time.Second, 2 * time.Second},
	}
}

// FetchPage returns one page of an event's gallery. The host is retried on
// failure; once the retries are spent the page comes back empty with
// hasMore=false rather than an error, so a flaky host degrades the page
// instead of breaking it. The listing is fetched whole and sliced here,
// which means a listing that changes between pages can shift entries.
func (c *Client) FetchPage(ctx context.Context, eventTitle string, page, pageSize int) model.GalleryPage {
	if pageSize <= 0 {
		pageSize = 24
	}
	if page < 0 {
		page = 0
	}

	images, err := c.listing(ctx, eventTitle)
	if err != nil {
		logger.Warn("Gallery listing unavailable, serving empty page",
			logger.String("event", eventTitle),
			logger.ErrorField(err))
		return model.GalleryPage{Images: []model.GalleryImage{}, HasMore: false}
	}

	start := page * pageSize
	if start >= len(images) {
		return model.GalleryPage{Images: []model.GalleryImage{}, HasMore: false}
	}
	end := start + pageSize
	if end > len(images) {
		end = len(images)
	}
	return model.GalleryPage{
		Images:  images[start:end],
		HasMore: end < len(images),
	}
}

// listing returns the full album listing, from cache when fresh.
func (c *Client) listing(ctx context.Context, eventTitle string) ([]model.GalleryImage, error) {
	cacheKey := c.provider + ":" + eventTitle
	if c.cache != nil {
		if images, ok := c.cache.GetListing(ctx, cacheKey); ok {
			return images, nil
		}
	}

	var images []model.GalleryImage
	var lastErr error
	for attempt := 0; attempt <= len(c.backoff); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff[attempt-1]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		images, lastErr = c.fetchListing(ctx, eventTitle)
		if lastErr == nil {
			break
		}
		logger.Warn("Gallery listing attempt failed",
			logger.String("event", eventTitle),
			logger.Int("attempt", attempt+1),
			logger.ErrorField(lastErr))
	}
	if lastErr != nil {
		return nil, lastErr
	}

	if c.cache != nil {
		c.cache.SetListing(ctx, cacheKey, images)
	}
	return images, nil
}

func (c *Client) fetchListing(ctx context.Context, eventTitle string) ([]model.GalleryImage, error) {
	token, err := c.ensureAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/albums/" + url.PathEscape(eventTitle) + "/images"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gallery host request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token went stale mid-flight; drop it so the next attempt mints
		// a fresh one.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
		return nil, fmt.Errorf("gallery host rejected access token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gallery host returned status %d", resp.StatusCode)
	}

	var images []model.GalleryImage
	if err := json.NewDecoder(resp.Body).Decode(&images); err != nil {
		return nil, fmt.Errorf("failed to decode gallery listing: %w", err)
	}
	return images, nil
}

// ensureAccessToken returns a valid access token, exchanging the stored
// refresh token when the cached one is missing or expired.
func (c *Client) ensureAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	row, err := c.tokens.GetToken(ctx, c.provider)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", fmt.Errorf("no refresh token stored for provider %s", c.provider)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", row.RefreshToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token refresh returned an empty access token")
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - 30*time.Second)

	// The host may rotate the refresh token on every exchange.
	if payload.RefreshToken != "" && payload.RefreshToken != row.RefreshToken {
		row.RefreshToken = payload.RefreshToken
		if err := c.tokens.SaveToken(ctx, row); err != nil {
			logger.Error("Failed to persist rotated refresh token",
				logger.String("provider", c.provider),
				logger.ErrorField(err))
		}
	}

	return c.accessToken, nil
}
