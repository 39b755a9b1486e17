package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/medops-hub/workorder-service/pkg/util"
)

// SchedulerKeyHeader carries the shared key of the external cron scheduler.
const SchedulerKeyHeader = "X-Scheduler-Key"

// HashKey hashes a plaintext key with the given bcrypt cost.
func HashKey(key string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareKey verifies a key against its hashed value.
func CompareKey(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// RequireSchedulerKey guards internal endpoints called by the scheduler.
// An empty hash disables the endpoints entirely.
func RequireSchedulerKey(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return util.NewForbidden("scheduler access is not configured")
		}
		key := strings.TrimSpace(c.Get(SchedulerKeyHeader))
		if key == "" {
			return util.NewUnauthorized("missing scheduler key")
		}
		if err := CompareKey(hash, key); err != nil {
			return util.NewUnauthorized("invalid scheduler key")
		}
		return c.Next()
	}
}
