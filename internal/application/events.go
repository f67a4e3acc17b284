package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/blogilista/internal/domain/repository"
)

// publish emits a domain event without letting a broker failure reach the caller.
func publish(ctx context.Context, events repo.EventPublisher, logger *logrus.Logger, event string, payload map[string]any) {
	if events == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := events.Publish(c, event, payload); err != nil {
		logger.WithError(err).WithField("event", event).Warn("publish event failed")
	}
}
