package http

import (
	"net/http"

	"github.com/niwaya/kintai-backend/internal/domain/notification"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
)

// NotificationHandler serves the admin-only reminder settings.
type NotificationHandler interface {
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
	SendDailyReportReminder(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) NotificationHandler {
	return &notificationHandlerImpl{notifService: notifService}
}

func (h *notificationHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.notifService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, settings)
}

func (h *notificationHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req notification.UpdateSettingsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	settings, err := h.notifService.UpdateSettings(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Notification settings updated successfully", settings)
}

// SendDailyReportReminder runs the daily-report sweep now, ignoring the
// enabled and weekend settings.
func (h *notificationHandlerImpl) SendDailyReportReminder(w http.ResponseWriter, r *http.Request) {
	result, err := h.notifService.SendDailyReportReminders(r.Context(), true)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Daily report reminder sent", result)
}
