package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
)

type contextKey string

const cacheContextKey = contextKey("request-cache")

// Cache is a request-scoped key/value store carried in the context. Besides
// memoization it is the seam through which tests swap out outbound calls.
type Cache struct {
	items map[string]any
	mu    sync.RWMutex
}

func cacheKey(args ...any) string {
	largs := make([]string, len(args))
	for i, a := range args {
		largs[i] = fmt.Sprintf("%v", a)
	}
	return strings.Join(largs, "/")
}

func cacheFromContext(ctx context.Context) *Cache {
	cache, _ := ctx.Value(cacheContextKey).(*Cache)
	return cache
}

func GetCacheValue[T any](ctx context.Context, key []any, fallback T) (val T, found bool) {
	cache := cacheFromContext(ctx)
	if cache == nil {
		return fallback, false
	}
	cache.mu.RLock()
	defer cache.mu.RUnlock()

	res, inCache := cache.items[cacheKey(key...)]
	if inCache {
		val, assertOk := res.(T)
		if assertOk {
			return val, true
		}
	}
	return fallback, false
}

// SetCacheValue stores val under key and returns a function restoring the
// previous state, so tests can `defer SetCacheValue(...)()`.
func SetCacheValue(ctx context.Context, key []any, val any) func() {
	cache := cacheFromContext(ctx)
	if cache == nil {
		return func() {}
	}

	cache.mu.Lock()
	ck := cacheKey(key...)
	original, originalFound := cache.items[ck]
	cache.items[ck] = val
	cache.mu.Unlock()

	return func() {
		cache.mu.Lock()
		defer cache.mu.Unlock()

		if originalFound {
			cache.items[ck] = original
		} else {
			delete(cache.items, ck)
		}
	}
}

func ContextWithCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, cacheContextKey, &Cache{
		items: map[string]any{},
	})
}

func CacheMiddleware(function NetlifyFunction) NetlifyFunction {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
		return function(ContextWithCache(ctx), request)
	}
}
