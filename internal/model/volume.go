package model

// VolumeRecord is one book as returned by the volume-search API.
// Optional fields are empty strings when the API omits them.
type VolumeRecord struct {
	Title        string   `json:"title"`
	Authors      []string `json:"authors,omitempty"`
	Publisher    string   `json:"publisher,omitempty"`
	Description  string   `json:"description,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
}
