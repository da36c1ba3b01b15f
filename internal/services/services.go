// Package services implements the photovault use cases on top of the entity
// store: accounts, folders and photos. Services are safe to share between
// goroutines only as far as the underlying store backend is.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/google/uuid"
)

var (
	now   = time.Now
	newID = uuid.NewString
)

func timestamp() string {
	return models.Timestamp(now())
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", common.ErrValidation, err)
}

// removeObjects deletes the remote payload of photos. Failures are logged and
// swallowed: local metadata is already gone by the time this runs.
func removeObjects(ctx context.Context, gw gateway.Gateway, logger logging.Logger, photos []models.Photo) {
	if gw == nil {
		return
	}
	for _, p := range photos {
		if p.S3Key == "" {
			continue
		}
		if err := gw.DeleteObject(gateway.WithOwner(ctx, p.UserID), p.S3Key); err != nil {
			logger.Warn(ctx, "remote delete failed", "photo_id", p.ID, "key", p.S3Key, "error", err)
		}
	}
}
