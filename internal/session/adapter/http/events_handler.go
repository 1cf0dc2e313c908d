package http

import (
	"context"
	"encoding/json"

	"workly-web/internal/session/adapter/persistence"
	"workly-web/internal/session/domain/model"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultEventCount = 20
	maxEventCount     = 200
)

// AuditReader reads the session event stream newest first.
type AuditReader interface {
	Recent(ctx context.Context, count int64) ([]persistence.AuditEntry, error)
}

// EventsHandler exposes the calling client's recent session events.
type EventsHandler struct {
	audit AuditReader
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(audit AuditReader) *EventsHandler {
	return &EventsHandler{audit: audit}
}

// RecentEvents returns up to ?limit= events recorded for this client context.
// The stream is shared by all clients, so more entries are read than returned.
func (h *EventsHandler) RecentEvents(c *fiber.Ctx) error {
	clientID, err := utils.GetClientIDFromContext(c.UserContext())
	if err != nil {
		return apperrors.NewInternalError("client context missing").WithCause(err)
	}

	limit := c.QueryInt("limit", defaultEventCount)
	if limit <= 0 || limit > maxEventCount {
		return apperrors.NewValidationError("limit must be between 1 and 200")
	}

	entries, err := h.audit.Recent(c.UserContext(), maxEventCount*5)
	if err != nil {
		return apperrors.NewInfrastructureError("failed to read session events").WithCause(err).WithComponent("session")
	}

	events := make([]fiber.Map, 0, limit)
	for _, entry := range entries {
		var payload model.SessionEvent
		if err := json.Unmarshal([]byte(entry.Data), &payload); err != nil || payload.ClientID != clientID {
			continue
		}
		events = append(events, fiber.Map{
			"id":        entry.EventID,
			"type":      entry.Type,
			"timestamp": entry.Timestamp,
			"userId":    payload.UserID,
			"reason":    payload.Reason,
		})
		if len(events) == limit {
			break
		}
	}
	return c.JSON(fiber.Map{"events": events})
}
