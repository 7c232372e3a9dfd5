package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
)

// NotificationHandler handles the notification inbox.
type NotificationHandler struct {
	notifications *repository.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

const defaultNotificationLimit = 50

type notificationGroup struct {
	Date          string                `json:"date"`
	Notifications []domain.Notification `json:"notifications"`
}

// List returns the caller's notifications, newest first. ?unread_only=true
// filters to unread; ?grouped=true buckets them by calendar day.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)

	limit := queryInt(c, "limit", defaultNotificationLimit)
	unreadOnly := queryBool(c, "unread_only")

	notifications, err := h.notifications.List(c.Request().Context(), userID, unreadOnly, limit)
	if err != nil {
		return err
	}

	if !queryBool(c, "grouped") {
		return JSONList(c, http.StatusOK, notifications, len(notifications))
	}

	// Preserve newest-first ordering across and within groups.
	var groups []notificationGroup
	for _, n := range notifications {
		day := n.CreatedAt.UTC().Format("2006-01-02")
		if len(groups) == 0 || groups[len(groups)-1].Date != day {
			groups = append(groups, notificationGroup{Date: day})
		}
		last := &groups[len(groups)-1]
		last.Notifications = append(last.Notifications, n)
	}
	return JSONList(c, http.StatusOK, groups, len(notifications))
}

type markReadRequest struct {
	Read *bool `json:"read,omitempty"`
}

// MarkRead toggles a notification's read flag (defaults to read).
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, _ := GetUserID(c)
	notificationID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	read := true
	if req.Read != nil {
		read = *req.Read
	}

	n, err := h.notifications.MarkRead(c.Request().Context(), notificationID, userID, read)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, n)
}

// MarkAllRead marks every notification read and reports how many changed.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, _ := GetUserID(c)

	updated, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]int64{"updated": updated})
}
