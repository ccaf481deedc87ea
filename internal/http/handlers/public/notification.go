package public

import (
	"strconv"

	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the caller's inbox, newest first. ?unread=true
// narrows to unread rows.
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	onlyUnread := c.Query("unread") == "true"

	notifications, total, err := h.NotificationService.ListForUser(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     uid,
		OnlyUnread: onlyUnread,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "notification listing failed", err)
		return
	}

	response.SuccessWithPage(c, notifications, response.BuildPagination(page, pageSize, total))
}

// GetUnreadCount returns the caller's unread badge count.
func (h *Handler) GetUnreadCount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	count, err := h.NotificationService.CountUnread(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "unread count failed", err)
		return
	}

	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead flips one of the caller's notifications to read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid notification id", nil)
		return
	}

	if err := h.NotificationService.MarkRead(uint(id), uid); err != nil {
		respondWithMappedError(c, err, notificationErrorRules, response.CodeInternal, "notification update failed")
		return
	}

	response.Success(c, nil)
}
