package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"

	"promobot/internal/interfaces"
	"promobot/internal/pkg/caching"
	"promobot/internal/pkg/limiter"
)

type TelegramChatMember struct {
	Status string `json:"status"`
}

type TelegramChatMemberResp struct {
	Ok     bool                `json:"ok"`
	Result *TelegramChatMember `json:"result"`
}

// ServiceMembership gates claims behind membership in the configured Telegram
// channel. Lookups hit the Bot API, so results are cached and rate limited
// per user.
type ServiceMembership struct {
	*ServiceHTTP
	container     *do.Injector
	cache         caching.Cache
	limiter       interfaces.Limiter
	serviceConfig *ServiceConfig
	baseURL       string
}

func NewServiceMembership(container *do.Injector) (*ServiceMembership, error) {
	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMembership{&ServiceHTTP{}, container, cache, rateLimiter, serviceConfig, TELEGRAM_API_BASE_URL}, nil
}

// IsMember reports whether the user belongs to the required channel. When no
// channel is configured the gate is open. Any API failure counts as not a
// member; handing out codes on an unverified check is worse than asking the
// user to retry.
func (service *ServiceMembership) IsMember(ctx context.Context, userID int64) (bool, error) {
	channel, _ := service.serviceConfig.GetStringConfig(ctx, CONFIG_REQUIRED_CHANNEL, os.Getenv("GROUP_ID"))
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return true, nil
	}

	callback := func() (bool, error) {
		err := service.limiter.Allow(ctx, LimitKeyMembership(userID), redis_rate.PerMinute(MEMBERSHIP_RATE_LIMIT_PER_MINUTE))
		if err != nil {
			if errors.Is(err, limiter.ErrRateLimited) {
				return false, errorx.Wrap(err, errorx.RateLimiting)
			}
			return false, err
		}

		member, err := service.apiChatMember(ctx, userID, channel)
		if err != nil || member == nil {
			return false, nil
		}

		switch member.Status {
		case "member", "administrator", "creator", "restricted":
			return true, nil
		}
		return false, nil
	}

	return caching.UseCache(ctx, service.cache, DBKeyMembership(userID, channel), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceMembership) apiChatMember(ctx context.Context, userID int64, channel string) (*TelegramChatMember, error) {
	resp, err := service.httpClient(1).Get(
		fmt.Sprintf("%s/bot%s/getChatMember?chat_id=%s&user_id=%d", service.baseURL, os.Getenv("BOT_TOKEN"), channel, userID),
		http.Header{},
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body TelegramChatMemberResp
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return nil, err
	}
	if !body.Ok {
		return nil, errors.New("getChatMember failed")
	}

	return body.Result, nil
}
