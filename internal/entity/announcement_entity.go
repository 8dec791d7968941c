package entity

import "time"

type Audience string

const (
	AudienceUser       Audience = "user"
	AudienceConsultant Audience = "consultant"
	AudienceBoth       Audience = "both"
)

// AudiencesFor lists the announcement audiences a recipient class receives.
func AudiencesFor(t RecipientType) []Audience {
	if t == RecipientConsultant {
		return []Audience{AudienceConsultant, AudienceBoth}
	}
	return []Audience{AudienceUser, AudienceBoth}
}

type Announcement struct {
	Id        uint
	Audience  Audience
	Title     string
	Message   string
	CreatedAt time.Time
}
