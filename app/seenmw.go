package app

import (
	"time"

	"shop_return_desk/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TouchLastSeen updates the user's last_seen_at at most once per throttle.
// Failures are logged and never block the request.
func TouchLastSeen(accounts db.Accounts, rdb *redis.Client, throttle time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := IdentityFrom(c)
		if ident == nil {
			c.Next()
			return
		}

		key := "user:lastseen:" + ident.UserID
		ok, err := rdb.SetNX(c.Request.Context(), key, "1", throttle).Result()
		if err != nil {
			log.Warn("last seen throttle", zap.Error(err))
		} else if ok {
			if err := accounts.TouchUserSeen(c.Request.Context(), ident.UserID); err != nil {
				log.Warn("touch last seen", zap.String("user_id", ident.UserID), zap.Error(err))
			}
		}
		c.Next()
	}
}
