// Package config resolves deployment configuration for the handlers.
//
// Values come from the process environment (and a local .env file when one
// exists) and, optionally, from an SSM Parameter Store path loaded once at cold
// start. The environment always wins over SSM.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"devagram/internal/errs"
)

// Required keys, grouped the way handlers ask for them.
const (
	UserPoolID       = "USER_POOL_ID"
	UserPoolClientID = "USER_POOL_CLIENT_ID"
	UserTable        = "USER_TABLE"
	PostTable        = "POST_TABLE"
	AvatarBucket     = "AVATAR_BUCKET"
	PostBucket       = "POST_BUCKET"
)

// Optional keys.
const (
	LogLevel            = "LOG_LEVEL"
	FeedPageSize        = "FEED_PAGE_SIZE"
	SignedURLTTLSeconds = "SIGNED_URL_TTL_SECONDS"
	EventsTopicARN      = "EVENTS_TOPIC_ARN"
	SSMPath             = "CONFIG_SSM_PATH"
)

const (
	defaultPageSize     = 10
	maxPageSize         = 100
	defaultSignedURLTTL = 15 * time.Minute
)

type Resolver struct {
	k *koanf.Koanf
}

// Values holds the resolved value of every requested key.
type Values map[string]string

func (v Values) Get(key string) string {
	return v[key]
}

// Load builds a Resolver from the environment and, when CONFIG_SSM_PATH is set,
// from the parameters under that path. ssmClient may be nil when SSM is not used.
func Load(ctx context.Context, ssmClient SSMClient) (*Resolver, error) {
	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv(SSMPath)); path != "" && ssmClient != nil {
		if err := k.Load(NewSSMProvider(ctx, ssmClient, path), nil); err != nil {
			return nil, fmt.Errorf("load ssm parameters %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	return &Resolver{k: k}, nil
}

// FromEnv is Load without SSM.
func FromEnv() (*Resolver, error) {
	return Load(context.Background(), nil)
}

// Resolve returns every key's value, or a ConfigurationMissing error naming
// the first key (in argument order) that has no value.
func (r *Resolver) Resolve(keys ...string) (Values, error) {
	vals := make(Values, len(keys))
	for _, key := range keys {
		v := r.k.String(key)
		if v == "" {
			return nil, errs.NewConfigurationMissing(fmt.Sprintf("Env %s nao encontrada", key))
		}
		vals[key] = v
	}
	return vals, nil
}

func (r *Resolver) String(key, fallback string) string {
	if v := strings.TrimSpace(r.k.String(key)); v != "" {
		return v
	}
	return fallback
}

func (r *Resolver) LogLevel() string {
	return r.String(LogLevel, "info")
}

func (r *Resolver) PageSize() int32 {
	n := r.k.Int(FeedPageSize)
	if n <= 0 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return int32(n)
}

func (r *Resolver) SignedURLTTL() time.Duration {
	n := r.k.Int(SignedURLTTLSeconds)
	if n <= 0 {
		return defaultSignedURLTTL
	}
	return time.Duration(n) * time.Second
}

func (r *Resolver) EventsTopic() string {
	return r.String(EventsTopicARN, "")
}
