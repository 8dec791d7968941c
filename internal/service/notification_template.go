package service

import (
	"fmt"
	"html"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/pkg/events"
)

// TimestampLayout is how event times are shown to people.
const TimestampLayout = "Jan 02, 2006 15:04"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// templateData holds the entities a notification refers to. A missing entry
// means the referenced row is gone or not visible to the recipient.
type templateData struct {
	bookings      map[uint]*entity.Booking
	announcements map[uint]*entity.Announcement
}

func renderNotification(n *entity.Notification, data templateData) string {
	switch n.Type {
	case entity.NotificationSessionApproved:
		if b, ok := data.bookings[n.RelatedId]; ok && n.Recipient.Type == entity.RecipientUser && b.RequesterId == n.Recipient.Id {
			return fmt.Sprintf("Your session scheduled for %s has been approved.", formatTimestamp(b.ScheduledAt))
		}
		return "A session you booked has been approved."

	case entity.NotificationBookingRequested:
		if b, ok := data.bookings[n.RelatedId]; ok && n.Recipient.Type == entity.RecipientConsultant &&
			b.RequestedConsultantId != nil && *b.RequestedConsultantId == n.Recipient.Id {
			return fmt.Sprintf("New session request for %s.", formatTimestamp(b.ScheduledAt))
		}
		return "You have a new session request."

	case entity.NotificationSessionReady:
		return "Your video session is ready. Join it from your dashboard."

	case entity.NotificationPostApproved:
		if title, ok := n.Metadata["title"].(string); ok && title != "" {
			return fmt.Sprintf("Your post '%s' has been approved.", html.EscapeString(title))
		}
		return "A post you submitted has been approved."

	case entity.NotificationAnnouncement:
		if a, ok := data.announcements[n.RelatedId]; ok && audienceIncludes(a.Audience, n.Recipient.Type) {
			return renderAnnouncement(a)
		}
		return "New announcement received."
	}
	return "New notification received."
}

func renderAnnouncement(a *entity.Announcement) string {
	return html.EscapeString(a.Title) + ": " + html.EscapeString(a.Message)
}

func audienceIncludes(a entity.Audience, t entity.RecipientType) bool {
	for _, candidate := range entity.AudiencesFor(t) {
		if candidate == a {
			return true
		}
	}
	return false
}

// notificationEvent wraps a freshly written notification for realtime delivery.
func notificationEvent(eventType string, n *entity.Notification, message string) events.BaseEvent {
	return events.New(eventType, map[string]interface{}{
		"recipient_type":    string(n.Recipient.Type),
		"recipient_id":      n.Recipient.Id,
		"notification_id":   n.Id,
		"notification_type": string(n.Type),
		"related_id":        n.RelatedId,
		"message":           message,
	}, n.CreatedAt)
}
