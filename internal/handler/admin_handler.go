package handler

import (
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/dto"
	"leadsync/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles operator endpoints for the sync retry queue
type AdminHandler struct {
	retryQueue service.RetryQueueService
	syncSvc    service.SyncService
	batchSize  int
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(retryQueue service.RetryQueueService, syncSvc service.SyncService, batchSize int) *AdminHandler {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &AdminHandler{
		retryQueue: retryQueue,
		syncSvc:    syncSvc,
		batchSize:  batchSize,
	}
}

// GetDeadLetters godoc
// @Summary List dead-lettered sync entries
// @Description Returns entries that exhausted their retry budget
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DeadLetterListResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /admin/sync/dead-letter [get]
func (h *AdminHandler) GetDeadLetters(c *fiber.Ctx) error {
	entries, err := h.retryQueue.GetDeadLetterQueue(c.Context())
	if err != nil {
		return err
	}

	resp := dto.DeadLetterListResponse{
		Entries: make([]dto.SyncQueueEntryResponse, 0, len(entries)),
		Count:   len(entries),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, toQueueEntryResponse(entry))
	}
	return c.JSON(resp)
}

// ProcessQueue godoc
// @Summary Drain the retry queue now
// @Description Claims and processes one batch of ready entries
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProcessQueueResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /admin/sync/process [post]
func (h *AdminHandler) ProcessQueue(c *fiber.Ctx) error {
	result, err := h.retryQueue.ProcessPendingQueue(c.Context(), h.batchSize, h.syncSvc)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProcessQueueResponse{
		Processed: result.Processed,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

// GetStats godoc
// @Summary Sync queue statistics
// @Description Queue depth per status plus the trailing-hour failure count
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SyncStatsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /admin/sync/stats [get]
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	counts, failures, err := h.retryQueue.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.SyncStatsResponse{
		StatusCounts:     counts,
		FailuresLastHour: failures,
	})
}

func toQueueEntryResponse(entry *domain.SyncQueueEntry) dto.SyncQueueEntryResponse {
	resp := dto.SyncQueueEntryResponse{
		ID:           entry.ID,
		AssessmentID: entry.AssessmentID,
		ErrorType:    entry.ErrorType,
		RetryCount:   entry.RetryCount,
		MaxRetries:   entry.MaxRetries,
		Priority:     entry.Priority,
		Status:       entry.Status,
		LastError:    entry.LastError,
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    entry.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if entry.NextRetryAt != nil {
		resp.NextRetryAt = entry.NextRetryAt.UTC().Format(time.RFC3339)
	}
	return resp
}
