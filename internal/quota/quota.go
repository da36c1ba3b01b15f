// Package quota keeps each user's storageUsed counter in step with the photos
// they own and checks it against the plan's capacity.
package quota

import (
	"context"
	"math"
	"strconv"

	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/store"
)

const GiB int64 = 1 << 30

// Limit is a plan capacity. Unbounded plans ignore Bytes.
type Limit struct {
	Bytes     int64
	Unbounded bool
}

func (l Limit) String() string {
	if l.Unbounded {
		return "unlimited"
	}
	return FormatBytes(l.Bytes)
}

// LimitFor maps a plan to its capacity. Unknown plans get the essencial limit.
func LimitFor(plan models.Plan) Limit {
	switch plan {
	case models.PlanPro:
		return Limit{Bytes: 300 * GiB}
	case models.PlanStudio:
		return Limit{Unbounded: true}
	default:
		return Limit{Bytes: 100 * GiB}
	}
}

// WouldExceed reports whether storing incoming more bytes puts u over its
// plan. Landing exactly on the limit is allowed.
func WouldExceed(u models.User, incoming int64) bool {
	l := LimitFor(u.Plan)
	if l.Unbounded {
		return false
	}
	return u.StorageUsed+incoming > l.Bytes
}

// ApplyDelta returns current+delta, never below zero.
func ApplyDelta(current, delta int64) int64 {
	if n := current + delta; n > 0 {
		return n
	}
	return 0
}

// Percentage is used*100/limit, or 0 for unbounded plans.
func Percentage(used int64, l Limit) float64 {
	if l.Unbounded || l.Bytes <= 0 {
		return 0
	}
	return float64(used) / float64(l.Bytes) * 100
}

var units = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders n in base 1024 with at most two decimals, GB being the
// largest unit.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i, div := 0, int64(1)
	for i < len(units)-1 && n >= div*1024 {
		i++
		div *= 1024
	}
	v := float64(n) / float64(div)
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

// Usage is the dashboard summary for one user.
type Usage struct {
	Used       int64
	Limit      Limit
	Percentage float64
	Photos     int
}

// UsageOf summarises u against the photos given; only photos owned by u are
// counted.
func UsageOf(u models.User, photos []models.Photo) Usage {
	n := 0
	for _, p := range photos {
		if p.UserID == u.ID {
			n++
		}
	}
	l := LimitFor(u.Plan)
	return Usage{Used: u.StorageUsed, Limit: l, Percentage: Percentage(u.StorageUsed, l), Photos: n}
}

// Accountant applies deltas to stored users.
type Accountant struct {
	store *store.Store
}

// NewAccountant binds to s. Build it from the transactional store when the
// change must land together with a photo write.
func NewAccountant(s *store.Store) *Accountant {
	return &Accountant{store: s}
}

// ApplyDelta adjusts the stored counter of userID.
func (a *Accountant) ApplyDelta(ctx context.Context, userID string, delta int64) (store.Outcome, error) {
	s := a.store
	u, ok, err := s.FindUser(ctx, userID)
	if err != nil {
		return store.NotFound, err
	}
	if !ok {
		return store.NotFound, nil
	}
	return s.UpdateUser(ctx, userID, models.SetStorageUsed{Bytes: ApplyDelta(u.StorageUsed, delta)})
}
