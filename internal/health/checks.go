package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Erfan-programmer/divix-cart/internal/config"
	"github.com/hellofresh/health-go/v5"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

// NewHealthHandler reports the two collaborators this service cannot run
// without: the Redis store holding cart identity and the upstream cart API.
func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "divix-cart",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{
				Name:      "redis",
				Timeout:   2 * time.Second,
				SkipOnErr: false,
				Check: healthRedis.New(
					healthRedis.Config{
						DSN: cfg.RedisConnect.GetDSN(),
					},
				),
			},
			health.Config{
				Name:      "commerce-api",
				Timeout:   5 * time.Second,
				SkipOnErr: true,
				Check:     commerceCheck(cfg.Commerce.BaseURL),
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build health handler: %w", err)
	}

	return h, nil
}

func commerceCheck(baseURL string) func(ctx context.Context) error {
	client := &http.Client{Timeout: 5 * time.Second}

	return func(ctx context.Context) error {

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/cart", nil)
		if err != nil {
			return fmt.Errorf("failed to build commerce api request: %w", err)
		}

		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("commerce api unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("commerce api returned status %d", resp.StatusCode)
		}

		return nil
	}
}
