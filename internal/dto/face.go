package dto

// FaceInfo is one enrolled face image.
type FaceInfo struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
}

// FacesData is the response of GET /api/faces.
type FacesData struct {
	Faces  []FaceInfo `json:"faces"`
	Dir    string     `json:"dir"`
	Length int        `json:"length"`
}

// TrackRequest selects the identity to track by its 0-based position.
type TrackRequest struct {
	Index *int `json:"index"`
}
