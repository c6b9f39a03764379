package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
	"time"
)

type DB int
type ReleaseLock func() error

// Client stores JSON documents, one per key.
type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

var ctx = context.Background()

type Config struct {
	LockExpirationSeconds   int     `envconfig:"SVM_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"SVM_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"SVM_REDIS_PORT" required:"true"`
	HASentinelPort          string  `envconfig:"SVM_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"SVM_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"SVM_REDIS_AUTH_PASSWORD" default:""`
	AuthRequired            bool    `envconfig:"SVM_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"SVM_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"SVM_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	cfg, err := readEnvironment()
	if err != nil {
		return Client{}, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateFailoverClient(cfg, db)
	} else {
		client = CreateClient(cfg, db)
	}
	return NewClientWith(client, time.Duration(cfg.LockExpirationSeconds)*time.Second), nil
}

// NewClientWith wraps an existing connection.
func NewClientWith(client redis.UniversalClient, lockExpiration time.Duration) Client {
	return Client{
		client:         client,
		lockExpiration: lockExpiration,
	}
}

func CreateFailoverClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClient(&options)
}

func CreateClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	options := redis.Options{
		Addr:       addr,
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

// GetDocument decodes the JSON stored at redisKey into doc.
func (client *Client) GetDocument(redisKey string, doc interface{}) error {
	b, err := client.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		return fmt.Errorf("failed to get %q: %w", redisKey, err)
	}
	if err = json.Unmarshal(b, doc); err != nil {
		return fmt.Errorf("failed to decode %q: %w", redisKey, err)
	}
	return nil
}

// UpdateDocument reads the document under a lock, lets update change doc and
// writes it back before the lock is released.
func (client *Client) UpdateDocument(redisKey string, doc interface{}, update func()) (err error) {
	releaseLock, err := client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()
	if err = client.GetDocument(redisKey, doc); err != nil {
		return err
	}
	update()
	return client.SaveDocument(redisKey, doc)
}

func (client *Client) Lock(redisKey string) (ReleaseLock, error) {
	lockCl := redislock.New(client.client)
	str := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lockKey := fmt.Sprintf("lock:%s", redisKey)
	lock, err := lockCl.Obtain(ctx, lockKey, client.lockExpiration, &redislock.Options{RetryStrategy: str})
	if err != nil {
		return nil, fmt.Errorf("failed to lock %q: %w", redisKey, err)
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (client *Client) SaveDocument(redisKey string, doc interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return client.client.Set(ctx, redisKey, b, 0).Err()
}

func (client *Client) Close() error {
	return client.client.Close()
}

func readEnvironment() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
