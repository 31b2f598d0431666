package products

import (
	"encoding/json"
	"sort"
	"strings"
)

// NormalizeImages converts the heterogeneous shapes stored in the images
// JSONB column into the canonical slice. Upstream feeds variously store a
// single URL string, a list of URL strings, a single object, or a list of
// objects whose URL field is named url, src, or image. Anything unreadable
// is dropped rather than failing the product.
func NormalizeImages(raw json.RawMessage) []Image {
	if len(raw) == 0 {
		return []Image{}
	}

	var entries []json.RawMessage
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return []Image{}
		}
	} else {
		entries = []json.RawMessage{raw}
	}

	images := make([]Image, 0, len(entries))
	for i, entry := range entries {
		if img, ok := normalizeImageEntry(entry, i); ok {
			images = append(images, img)
		}
	}

	sort.SliceStable(images, func(a, b int) bool {
		return images[a].Position < images[b].Position
	})
	for i := range images {
		images[i].Position = i
	}
	return images
}

// PrimaryImageURL returns the first canonical image URL, or nil.
func PrimaryImageURL(raw json.RawMessage) *string {
	images := NormalizeImages(raw)
	if len(images) == 0 {
		return nil
	}
	url := images[0].URL
	return &url
}

func normalizeImageEntry(entry json.RawMessage, index int) (Image, bool) {
	var asString string
	if err := json.Unmarshal(entry, &asString); err == nil {
		url := strings.TrimSpace(asString)
		if url == "" {
			return Image{}, false
		}
		return Image{URL: url, Position: index}, true
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(entry, &asObject); err != nil {
		return Image{}, false
	}

	url := firstStringField(asObject, "url", "src", "image")
	if url == "" {
		return Image{}, false
	}

	img := Image{URL: url, Position: index}
	if alt := firstStringField(asObject, "alt", "alt_text"); alt != "" {
		img.Alt = alt
	}
	if rawPos, ok := asObject["position"]; ok {
		var pos int
		if err := json.Unmarshal(rawPos, &pos); err == nil {
			img.Position = pos
		}
	}
	return img, true
}

func firstStringField(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
