package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tourbook/internal/models"
)

var ErrTourNotFound = errors.New("tour not found in catalog")

// retryDelay is the pause before the single retry of a catalog miss.
// Freshly published activities can lag the catalog read replica.
const retryDelay = 150 * time.Millisecond

type wireTour struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Duration   string   `json:"duration"`
	Capacity   int      `json:"capacity"`
	StartTimes []string `json:"startTimes"`
}

// Client is an HTTP client for the activity catalog with optional Redis
// caching for GET endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UseRedisCache configures optional Redis caching for catalog reads.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// GetTour fetches one activity by id. A miss is retried once after a short
// delay before being reported as ErrTourNotFound.
func (c *Client) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	cacheKey := "catalog:tour:" + id

	var cached models.Tour
	if c.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	tour, err := c.fetchTour(ctx, id)
	if errors.Is(err, ErrTourNotFound) {
		c.logger.Debug().Str("tour_id", id).Msg("catalog miss, retrying once")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
		tour, err = c.fetchTour(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	c.writeCache(ctx, cacheKey, tour)
	return tour, nil
}

// ListTours returns all activities currently offered.
func (c *Client) ListTours(ctx context.Context) ([]models.Tour, error) {
	cacheKey := "catalog:tours"

	var cached []models.Tour
	if c.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/api/v1/activities", c.baseURL)
	var wrap struct {
		Data []wireTour `json:"data"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}

	now := time.Now()
	tours := make([]models.Tour, 0, len(wrap.Data))
	for _, wt := range wrap.Data {
		tours = append(tours, toTour(wt, now))
	}

	c.writeCache(ctx, cacheKey, tours)
	return tours, nil
}

func (c *Client) fetchTour(ctx context.Context, id string) (*models.Tour, error) {
	endpoint := fmt.Sprintf("%s/api/v1/activities/%s", c.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTourNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned http %d", resp.StatusCode)
	}

	var wrap struct {
		Data *wireTour `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrap); err != nil {
		return nil, err
	}
	if wrap.Data == nil || wrap.Data.ID == "" {
		return nil, ErrTourNotFound
	}

	tour := toTour(*wrap.Data, time.Now())
	return &tour, nil
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("catalog returned http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func toTour(wt wireTour, fetchedAt time.Time) models.Tour {
	return models.Tour{
		ID:         wt.ID,
		Name:       wt.Name,
		Price:      wt.Price,
		Duration:   wt.Duration,
		Capacity:   wt.Capacity,
		StartTimes: wt.StartTimes,
		FetchedAt:  fetchedAt,
	}
}
