package dto

type NotificationItem struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type FetchNotificationsResponse struct {
	Notifications []NotificationItem `json:"notifications"`
}

type ClearNotificationsResponse struct {
	Cleared int64 `json:"cleared"`
}

type CreateAnnouncementRequest struct {
	Audience string `json:"audience" validate:"required,oneof=user consultant both"`
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"required"`
}

type CreateAnnouncementResponse struct {
	AnnouncementId uint  `json:"announcement_id"`
	Recipients     int64 `json:"recipients"`
}
