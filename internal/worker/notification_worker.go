package worker

import (
	"github.com/spec-kit/grievance-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to issue
// events. Handlers run on the publishing goroutine once the owning
// transaction has committed.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
