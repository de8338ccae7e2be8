package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	auditdb "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/readinglog"
)

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/admin/audit?user_id=&type=&since=&skip=&limit=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}

	var filter auditdb.EventFilter
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		filter.UserID = uint(userID)
	}
	if eventType := c.Query("type"); eventType != "" {
		if !validEventType(entities.AuditEventType(eventType)) {
			respondBadRequest(c, "unknown event type: "+eventType)
			return
		}
		filter.EventType = entities.AuditEventType(eventType)
	}
	if raw := c.Query("since"); raw != "" {
		since, err := readinglog.ParseDate(raw)
		if err != nil {
			respondBadRequest(c, "invalid since, expected "+readinglog.DateLayout)
			return
		}
		filter.Since = since
	}

	events, total, err := ac.auditService.GetEvents(c.Request.Context(), filter, limit, offset)
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}
	c.JSON(http.StatusOK, newPage(events, total, offset, limit))
}

// EventTypes lists the event types accepted by the type filter.
// GET /api/admin/audit/types
func (ac *AuditController) EventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"event_types": eventTypes})
}

var eventTypes = []entities.AuditEventType{
	entities.AuditEventStatusChange,
	entities.AuditEventCollection,
	entities.AuditEventTaxonomy,
	entities.AuditEventReport,
	entities.AuditEventAuth,
	entities.AuditEventUser,
	entities.AuditEventMaintenance,
}

func validEventType(t entities.AuditEventType) bool {
	for _, known := range eventTypes {
		if known == t {
			return true
		}
	}
	return false
}

