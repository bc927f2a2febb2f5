package services

import (
	"fmt"
	"strings"
	"time"
)

const (
	CONFIG_SERVER_MODE        = "SERVER_MODE"
	CONFIG_REQUIRED_CHANNEL   = "REQUIRED_CHANNEL"
	CONFIG_SUPPORT_CONTACT    = "SUPPORT_CONTACT"
	CONFIG_HISTORY_PAGE_LIMIT = "HISTORY_PAGE_LIMIT"
	CONFIG_ADMIN_CHAT_ID      = "ADMIN_CHAT_ID"

	CONFIG_CRONJOB_TIME_EXPIRY_SWEEP  = "CRONJOB_TIME_EXPIRY_SWEEP"
	CONFIG_CRONJOB_TIME_DAILY_SUMMARY = "CRONJOB_TIME_DAILY_SUMMARY"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_PRODUCTION  = "production"

	HISTORY_DEFAULT_LIMIT = 10

	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_15_MINS    = 15 * time.Minute

	TELEGRAM_API_BASE_URL = "https://api.telegram.org"

	MEMBERSHIP_RATE_LIMIT_PER_MINUTE = 10
)

func LockKeyUserClaim(userID int64) string {
	return fmt.Sprintf("lock:user-claim:%d", userID)
}

func LockKeyRedeem(code string) string {
	return fmt.Sprintf("lock:redeem:%s", strings.ToUpper(code))
}

// db
func DBKeyAvailablePromos() string {
	return "promos:available"
}

func DBKeyPromo(promoID int64) string {
	return fmt.Sprintf("promo:%d", promoID)
}

func DBKeyStaff(staffID int64) string {
	return fmt.Sprintf("staff:%d", staffID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyMembership(userID int64, channel string) string {
	return fmt.Sprintf("membership:%d:%s", userID, strings.ToLower(channel))
}

func LimitKeyMembership(userID int64) string {
	return fmt.Sprintf("limit:membership:%d", userID)
}
