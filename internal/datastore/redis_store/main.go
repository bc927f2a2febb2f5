package redis_store

import (
	"fmt"
	"time"
)

// Dialog state lives this long before the wizard silently expires.
const DIALOG_TTL = 30 * time.Minute

func dbKeyDialog(userID int64) string {
	return fmt.Sprintf("dialog:%d", userID)
}
