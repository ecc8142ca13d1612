package util

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/mesophy/mesophy-signage/internal/msignctl/client"
	"github.com/mesophy/mesophy-signage/internal/msignctl/config"
)

// GetClient creates an API client from the environment and config. The
// MSIGN_API_URL and MSIGN_API_TOKEN environment variables override the
// active context.
func GetClient(verbose bool) (*client.Client, error) {
	apiURL := os.Getenv("MSIGN_API_URL")
	token := os.Getenv("MSIGN_API_TOKEN")

	if apiURL == "" || token == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		ctx, err := cfg.GetCurrentContext()
		if err == nil {
			if apiURL == "" {
				apiURL = ctx.Server
			}
			if token == "" {
				token = ctx.Token
			}
		}
	}
	if apiURL == "" {
		return nil, fmt.Errorf("no API server configured: set MSIGN_API_URL or add a context")
	}

	log := zerolog.Nop()
	if verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	return client.New(apiURL, client.WithToken(token), client.WithLogger(log))
}
