package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/sadopc/carbontrack/internal/carbon"
	"github.com/sadopc/carbontrack/internal/config"
)

// ValkeyCache stores aggregates in a Valkey-compatible server.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

func NewValkey(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "carbontrack"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	builder := c.client.B().Set().Key(c.key(key)).Value(string(value))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.client.Do(ctx, c.client.B().Del().Key(full...).Build()).Error()
}

func (c *ValkeyCache) Close() {
	c.client.Close()
}

func (c *ValkeyCache) key(k string) string {
	return c.prefix + ":" + k
}

var _ carbon.Cache = (*ValkeyCache)(nil)

// New picks the cache for cfg, falling back to memory when valkey is
// disabled or unreachable.
func New(cfg config.CacheConfig, logger *slog.Logger) carbon.Cache {
	if !cfg.Enabled {
		return NewMemory()
	}
	opt, err := buildValkeyOptions(cfg.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return NewMemory()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return NewMemory()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return NewMemory()
	}
	logger.Info("valkey cache enabled", "addr", cfg.Addr)
	return NewValkey(client, "carbontrack")
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
