package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/pkg/caching"
)

type ServiceConfig struct {
	store interfaces.ConfigStore
	cache caching.Cache
}

func NewServiceConfig(store interfaces.ConfigStore, cache caching.Cache) (*ServiceConfig, error) {
	return &ServiceConfig{store, cache}, nil
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCache(ctx, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	callback := func() (int, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if err != nil {
			return defaultValue, err
		}

		intValue, err := strconv.Atoi(config.Value)
		if err != nil {
			return defaultValue, err
		}

		return intValue, nil
	}

	value, err := caching.UseCache(ctx, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

// GetTimeConfig returns nil when the key is unset or malformed; callers treat
// nil as "no bound".
func (service *ServiceConfig) GetTimeConfig(ctx context.Context, key string) (*time.Time, error) {
	value, err := service.GetStringConfig(ctx, key, "")
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, nil
	}
	if err != nil || value == "" {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, nil
	}

	return &t, nil
}
