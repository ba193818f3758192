package model

type SuggestionRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Purpose  string `json:"purpose" validate:"required"`
}

type Suggestion struct {
	SuggestedRooms []string `json:"suggested_rooms"`
	Reason         string   `json:"reason"`
}
