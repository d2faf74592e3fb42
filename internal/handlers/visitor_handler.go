package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-todo-api/backend/internal/config"
	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/services"
)

// VisitorHandler は訪問者トラッキングのハンドラーを管理します。
type VisitorHandler struct {
	visitorService *services.VisitorService
}

// NewVisitorHandler は新しいVisitorHandlerを作成します。
func NewVisitorHandler(visitorService *services.VisitorService) *VisitorHandler {
	return &VisitorHandler{visitorService: visitorService}
}

// GetVisitorsHandler は最近の訪問者を最大100件返します。total は返した件数です。
func (h *VisitorHandler) GetVisitorsHandler(c *gin.Context) {
	visitors, err := h.visitorService.GetRecentVisitors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch visitors")
		return
	}
	total := len(visitors)
	c.JSON(http.StatusOK, Envelope{Success: true, Data: visitors, Total: &total})
}

// GetOverviewHandler は訪問者の集計を返します。
func (h *VisitorHandler) GetOverviewHandler(c *gin.Context) {
	overview, err := h.visitorService.GetOverview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch visitor overview")
		return
	}
	respondData(c, http.StatusOK, overview)
}

func (h *VisitorHandler) GetByCountryHandler(c *gin.Context) {
	counts, err := h.visitorService.GetByCountry(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch visitors by country")
		return
	}
	respondData(c, http.StatusOK, counts)
}

func (h *VisitorHandler) GetByDeviceHandler(c *gin.Context) {
	counts, err := h.visitorService.GetByDevice(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch visitors by device")
		return
	}
	respondData(c, http.StatusOK, counts)
}

// RecordVisitHandler は訪問を記録します。新規なら201、既存の訪問者なら200を返します。
func (h *VisitorHandler) RecordVisitHandler(c *gin.Context) {
	var req models.VisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meta := services.RequestMeta{
		ForwardedFor: c.GetHeader("X-Forwarded-For"),
		RemoteAddr:   c.Request.RemoteAddr,
		UserAgent:    c.GetHeader("User-Agent"),
		Referer:      c.GetHeader("Referer"),
	}
	visitor, created, err := h.visitorService.RecordVisit(c.Request.Context(), meta, req)
	if err != nil {
		respondServiceError(c, err, "record visit")
		return
	}

	if created {
		respondMessage(c, http.StatusCreated, visitor, "New visitor added")
		return
	}
	respondMessage(c, http.StatusOK, visitor, "Visitor updated")
}

// CleanupHandler は古い訪問者を削除します。?days=N で保持日数を指定できます。
func (h *VisitorHandler) CleanupHandler(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > config.MaxVisitorRetentionDays {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", config.MaxVisitorRetentionDays))
			return
		}
		days = n
	}

	deleted, err := h.visitorService.Cleanup(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err, "clean up visitors")
		return
	}
	respondMessage(c, http.StatusOK, gin.H{"deleted": deleted}, fmt.Sprintf("Removed %d old visitors", deleted))
}
