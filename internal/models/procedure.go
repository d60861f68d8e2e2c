package models

// Procedure описывает хирургическую процедуру из справочника.
//
// VideoURL возвращается клиенту только на платных тарифах,
// поэтому поле помечено omitempty.
type Procedure struct {
	ID            int    `json:"id"`
	SpecialtySlug string `json:"specialty"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Body          string `json:"body,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
}
