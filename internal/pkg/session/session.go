package session

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/EivindHaugen/SponsorFlow/internal/pkg/cache"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/env"
)

var sessionStore *session.Store

func NewSessionStore() *session.Store {
	// Get Redis client configuration from existing cache setup
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		// Prefer password from the underlying client if present
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	// Create Redis storage for sessions using database 1 (cache uses DB 0)
	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1, // Separate database for sessions
		Reset:    false,
	})

	sessionStore = session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		Expiration:     time.Hour * 1,
		KeyLookup:      "cookie:session_id",
	})

	return sessionStore
}

func GetSessionStore() *session.Store {
	return sessionStore
}

// SetSessionValue stores a single value on the current session.
func SetSessionValue(c *fiber.Ctx, key string, value interface{}) error {
	sess, err := GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(key, value)
	return sess.Save()
}

// GetSessionValue reads a single value from the current session.
func GetSessionValue(c *fiber.Ctx, key string) (interface{}, error) {
	sess, err := GetSessionStore().Get(c)
	if err != nil {
		return nil, err
	}
	return sess.Get(key), nil
}

// DeleteSessionValue removes a single value from the current session.
func DeleteSessionValue(c *fiber.Ctx, key string) error {
	sess, err := GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Delete(key)
	return sess.Save()
}
