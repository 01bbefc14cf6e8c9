package product

import (
	"sort"

	"github.com/google/uuid"
)

// NormalizeImages orders images by sort order (input position when unset)
// and leaves exactly one main image: the first one flagged main, else the
// first image.
func NormalizeImages(in []ImageInput) []Image {
	out := make([]Image, 0, len(in))
	for i, img := range in {
		order := i
		if img.SortOrder != nil {
			order = *img.SortOrder
		}
		out = append(out, Image{
			ID:        uuid.NewString(),
			URL:       img.URL,
			Alt:       img.Alt,
			SortOrder: order,
			IsMain:    img.IsMain,
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].SortOrder < out[b].SortOrder })

	mainIdx := -1
	for i := range out {
		if out[i].IsMain && mainIdx == -1 {
			mainIdx = i
		}
		out[i].IsMain = false
	}
	if len(out) > 0 {
		if mainIdx == -1 {
			mainIdx = 0
		}
		out[mainIdx].IsMain = true
	}
	return out
}
