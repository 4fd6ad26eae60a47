package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/gin-gonic/gin"
)

const defaultInboxLimit = 20

type Inbox interface {
	Notifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
}

type NotificationHandler struct {
	inbox Inbox
}

type notificationResponse struct {
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	CreatedAt string `json:"created_at"`
}

func NewNotificationHandler(inbox Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
}

func (h *NotificationHandler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	if limit == 0 {
		limit = defaultInboxLimit
	}

	items, err := h.inbox.Notifications(c.Request.Context(), actor.ID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationResponse{Message: n.Message, Severity: string(n.Severity), CreatedAt: formatTime(n.CreatedAt)})
	}
	c.JSON(http.StatusOK, resp)
}
