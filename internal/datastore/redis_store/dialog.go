package redis_store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"promobot/internal/models"
)

// GetDialogState returns the user's in-progress wizard, or nil when the user
// is not inside one.
func GetDialogState(ctx context.Context, cmd redis.Cmdable, userID int64) (*models.DialogState, error) {
	b, err := cmd.Get(ctx, dbKeyDialog(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var v *models.DialogState
	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func SaveDialogState(ctx context.Context, cmd redis.Cmdable, userID int64, state *models.DialogState) (*models.DialogState, error) {
	if state.Flow == "" {
		return nil, errors.New("invalid dialog state")
	}
	if state.StartedAt.IsZero() {
		state.StartedAt = time.Now()
	}

	b, err := msgpack.Marshal(state)
	if err != nil {
		return nil, err
	}

	err = cmd.Set(ctx, dbKeyDialog(userID), b, DIALOG_TTL).Err()
	if err != nil {
		return nil, err
	}

	return state, nil
}

func ClearDialogState(ctx context.Context, cmd redis.Cmdable, userID int64) error {
	return cmd.Del(ctx, dbKeyDialog(userID)).Err()
}
