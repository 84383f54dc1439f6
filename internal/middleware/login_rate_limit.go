package middleware

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/redis/go-redis/v9"
)

// loginIPFactor scales the per-minute limit for the per-IP counter, which
// covers many subjects tried from one client.
const loginIPFactor = 4

// LoginRateLimit limits login attempts per phone or email and per client IP using Redis if available.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
    if maxPerMin <= 0 {
        maxPerMin = 5
    }
    return func(c *fiber.Ctx) error {
        if cache == nil {
            return c.Next() // no-op without Redis
        }
        var req struct {
            Phone string `json:"phone"`
            Email string `json:"email"`
        }
        _ = c.BodyParser(&req)
        subject := strings.TrimSpace(req.Phone)
        if subject == "" {
            subject = strings.ToLower(strings.TrimSpace(req.Email))
        }

        ctx := c.UserContext()
        ipCount, err := hitWindow(ctx, cache, "rl:login:ip:"+c.IP())
        if err != nil {
            return c.Next() // fail-open on cache errors
        }
        if ipCount > int64(maxPerMin*loginIPFactor) {
            return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
        }
        if subject != "" {
            cnt, err := hitWindow(ctx, cache, "rl:login:subject:"+subject)
            if err != nil {
                return c.Next()
            }
            if cnt > int64(maxPerMin) {
                return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
            }
        }
        return c.Next()
    }
}

func hitWindow(ctx context.Context, cache *redis.Client, key string) (int64, error) {
    cnt, err := cache.Incr(ctx, key).Result()
    if err != nil {
        return 0, err
    }
    if cnt == 1 {
        cache.Expire(ctx, key, time.Minute)
    }
    return cnt, nil
}
