package main

import (
	"context"

	"github.com/bhuvi12a/expense-tracker/internal/auth"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCleanupScheduler purges expired password reset tokens every hour and
// abandoned two-factor sessions every five minutes.
func StartCleanupScheduler(authService auth.Service, logger *logrus.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("@hourly", func() {
		purged, err := authService.PurgeExpiredResetTokens(context.Background())
		if err != nil {
			logger.WithError(err).Error("Error purging expired password reset tokens")
			return
		}
		logger.WithField("purged", purged).Debug("Password reset tokens cleanup finished")
	})
	if err != nil {
		return nil, err
	}

	_, err = c.AddFunc("@every 5m", func() {
		purged := authService.PurgeExpiredSessions()
		logger.WithField("purged", purged).Debug("Two-factor sessions cleanup finished")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
