package model

// Track is the simplified track shape served to the quiz page
type Track struct {
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	PreviewURL *string `json:"preview_url"`
}
