package fetcher

import "book_catalog_tgbot/internal/model"

// volumesResponse matches the volume-search JSON payload.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	Description string   `json:"description"`
	ImageLinks  struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

func (r volumesResponse) records() []model.VolumeRecord {
	records := make([]model.VolumeRecord, 0, len(r.Items))
	for _, item := range r.Items {
		v := item.VolumeInfo
		records = append(records, model.VolumeRecord{
			Title:        v.Title,
			Authors:      v.Authors,
			Publisher:    v.Publisher,
			Description:  v.Description,
			ThumbnailURL: v.ImageLinks.Thumbnail,
		})
	}
	return records
}
