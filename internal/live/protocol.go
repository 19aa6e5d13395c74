package live

import "encoding/json"

type Message struct {
	Type       string          `json:"type"`
	DocumentID string          `json:"documentId,omitempty"`
	ViewerID   string          `json:"viewerId,omitempty"`
	Revision   int32           `json:"revision,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const (
	// Server to viewer
	TypeWelcome        = "welcome"
	TypeSceneUpdate    = "scene.update"
	TypeViewersChanged = "viewers.changed"
	TypeError          = "error"

	// Viewer to server
	TypeSceneRequest = "scene.request"
)

type WelcomePayload struct {
	ViewerID string `json:"viewerId"`
	Viewers  int    `json:"viewers"`
}

type ViewersPayload struct {
	Viewers int `json:"viewers"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
