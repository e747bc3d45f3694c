package server

// QuestionPayload is the POST /api/qa request body.
type QuestionPayload struct {
	Question string `json:"question"`
	Game     string `json:"game,omitempty"`
	Focus    string `json:"focus,omitempty"`
	Language string `json:"language,omitempty"`
}

// GuidePayload is the POST /api/guide request body.
type GuidePayload struct {
	Game     string `json:"game"`
	Focus    string `json:"focus,omitempty"`
	Extra    string `json:"extra,omitempty"`
	Language string `json:"language,omitempty"`
}
