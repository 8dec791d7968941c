package dto

type ConsultantRecommendation struct {
	ConsultantId uint    `json:"consultant_id"`
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
}
