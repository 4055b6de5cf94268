package scheduler

import (
	"context"
	"time"

	"educare/platform/logger"
)

const (
	defaultInviteCleanupInterval = time.Hour
	defaultInviteRetention       = 30 * 24 * time.Hour
)

// StaleInviteRemover deletes team invitations never accepted before a cutoff.
type StaleInviteRemover interface {
	DeleteStaleInvites(ctx context.Context, invitedBefore time.Time) (int64, error)
}

// InviteCleanup periodically removes pending team invitations that were
// never accepted, freeing their license seats.
type InviteCleanup struct {
	repo      StaleInviteRemover
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewInviteCleanup(repo StaleInviteRemover, log *logger.Logger, interval, retention time.Duration) *InviteCleanup {
	if interval <= 0 {
		interval = defaultInviteCleanupInterval
	}
	if retention <= 0 {
		retention = defaultInviteRetention
	}

	return &InviteCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *InviteCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *InviteCleanup) cleanup(ctx context.Context) {
	deleted, err := c.repo.DeleteStaleInvites(ctx, c.now().Add(-c.retention))
	if err != nil {
		c.log.Warn("stale invite cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("stale invite cleanup removed invitations", "deleted", deleted)
	}
}
