package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/pkg/adapters/file"
	"github.com/aretw0/tendril/pkg/adapters/redis"
	"github.com/aretw0/tendril/pkg/domain"
)

// ReadFeed fetches the live feed published by a running controller: from
// url when given (GET <url>/feed), otherwise from the configured backend.
func ReadFeed(ctx context.Context, cfg config.Config, url string) (domain.Feed, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case url != "":
		data, err = fetch(ctx, strings.TrimRight(url, "/")+"/feed")
	case cfg.Store.Backend == config.BackendRedis:
		rc := cfg.Store.Redis
		client := redis.NewClient(rc.Addr, rc.Password, rc.DB)
		defer client.Close()
		data, err = client.Get(ctx, rc.Prefix+"feed").Bytes()
	case cfg.Store.Backend == config.BackendMemory:
		return nil, errors.New("the memory backend keeps the feed in process; pass --url")
	default:
		data, err = os.ReadFile(filepath.Join(cfg.DataDir, file.FeedFile))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	var feed domain.Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
