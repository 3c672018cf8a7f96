package attendance

import (
	"context"
	"time"
)

// SourceRepository reads approved requests and logged reports overlapping
// [from, to]. A nil userIDs slice means every user.
type SourceRepository interface {
	LoadMonth(ctx context.Context, userIDs []string, from, to time.Time) (MonthData, error)
}
