package api

import (
	"net/http"

	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/models"
)

func GetFailedNotifications(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	if !middlewares.UserInfo(r).IsAdmin {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	notifications, err := ctx.DB.GetNotificationsByStatus(models.NotificationFailed)
	if err != nil {
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed getting notifications")
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	w.WriteJSON(http.StatusOK, models.NotificationsStruct{
		Notifications: notifications,
		Total:         len(notifications),
	}, nil, "")
}

// RetryFailedNotifications puts every stored failure back on the queue.
func RetryFailedNotifications(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	if !middlewares.UserInfo(r).IsAdmin {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	retried, err := ctx.Notifications.RetryFailed(r.Context())
	if err != nil {
		w.WriteJSON(http.StatusInternalServerError, map[string]int{"retried": retried}, err, "failed retrying notifications")
		return
	}

	w.WriteJSON(http.StatusOK, map[string]int{"retried": retried}, nil, "")
}

func GetNotificationStats(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	if !middlewares.UserInfo(r).IsAdmin {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	w.WriteJSON(http.StatusOK, ctx.Notifications.Stats(), nil, "")
}
