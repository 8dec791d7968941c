package entity

import "time"

type RecipientType string

const (
	RecipientUser       RecipientType = "user"
	RecipientConsultant RecipientType = "consultant"
)

// Recipient identifies a notification inbox. User and consultant ids live in
// different tables, so the type is part of the identity.
type Recipient struct {
	Type RecipientType
	Id   uint
}

type NotificationType string

const (
	NotificationSessionApproved  NotificationType = "session_approved"
	NotificationSessionReady     NotificationType = "session_ready"
	NotificationBookingRequested NotificationType = "booking_requested"
	NotificationPostApproved     NotificationType = "post_approved"
	NotificationAnnouncement     NotificationType = "announcement"
)

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

type Notification struct {
	Id        uint
	Recipient Recipient
	Type      NotificationType
	RelatedId uint
	Status    NotificationStatus
	Metadata  map[string]interface{}
	CreatedAt time.Time
	ReadAt    *time.Time
}

// NotificationSnapshot is the set of items a recipient was last shown by a fetch.
type NotificationSnapshot struct {
	Recipient       Recipient
	NotificationIds []uint
	AnnouncementIds []uint
	TakenAt         time.Time
}
