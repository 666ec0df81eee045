package worker

import (
	"github.com/spec-kit/tracker-bot/internal/service"
)

// StartNotificationWorker registers audit-log handlers for domain events.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
