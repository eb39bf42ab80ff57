// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/store/audit"
)

// listItem is one audit event as returned to the client.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	Subject       string            `json:"subject,omitempty"`
	ActorSubject  string            `json:"actorSubject,omitempty"`
	RoadmapID     string            `json:"roadmap,omitempty"`
	IP            string            `json:"ip"`
	RequestID     string            `json:"requestId,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func toItem(e audit.Event) listItem {
	it := listItem{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		Subject:       e.Subject,
		ActorSubject:  e.ActorSubject,
		IP:            e.IP,
		RequestID:     e.RequestID,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.RoadmapID != nil {
		it.RoadmapID = e.RoadmapID.Hex()
	}
	return it
}

// listResponse is the body of GET /.
type listResponse struct {
	Events     []listItem `json:"events"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Total      int64      `json:"total"`
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	account := []string{
		audit.EventUserProvisioned,
		audit.EventUserRegistered,
		audit.EventRegisterRejected,
		audit.EventProfileUpdated,
	}
	content := []string{
		audit.EventRoadmapCreated,
		audit.EventRoadmapUpdated,
		audit.EventRoadmapArchived,
		audit.EventRoadmapRestored,
		audit.EventProgressReset,
	}
	switch category {
	case audit.CategoryAccount:
		return account
	case audit.CategoryContent:
		return content
	default:
		return append(account, content...)
	}
}
