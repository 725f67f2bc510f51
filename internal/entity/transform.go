package entity

import "time"

type TransformResult struct {
	ID             string
	Caption        string
	GeneratedImage []byte
	GeneratedMIME  string
	MergedImage    []byte
	Layout         string
}

type TransformResponse struct {
	ID             string `json:"id"`
	Caption        string `json:"caption"`
	GeneratedImage string `json:"generated_image"`
	MergedImage    string `json:"merged_image"`
	MimeType       string `json:"mime_type"`
	Layout         string `json:"layout"`
}

// TransformEvent is published after every successful transform.
type TransformEvent struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	UploadMIME     string    `json:"upload_mime_type"`
	UploadBytes    int64     `json:"upload_bytes"`
	Caption        string    `json:"caption"`
	Layout         string    `json:"layout"`
	GeneratedBytes int       `json:"generated_bytes"`
	MergedBytes    int       `json:"merged_bytes"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

type ScenarioResponse struct {
	Description string `json:"description"`
	Scenario    string `json:"scenario"`
}
