package products

import (
	"encoding/json"
	"testing"
)

func TestNormalizeImagesStringList(t *testing.T) {
	raw := json.RawMessage(`["https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"]`)
	images := NormalizeImages(raw)

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].URL != "https://cdn.example.com/a.jpg" || images[0].Position != 0 {
		t.Fatalf("unexpected first image %+v", images[0])
	}
	if images[1].Position != 1 {
		t.Fatalf("expected position 1, got %d", images[1].Position)
	}
}

func TestNormalizeImagesObjectList(t *testing.T) {
	raw := json.RawMessage(`[
		{"src": "https://cdn.example.com/b.jpg", "position": 2},
		{"url": "https://cdn.example.com/a.jpg", "alt": "front", "position": 1}
	]`)
	images := NormalizeImages(raw)

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	// Sorted by declared position, then re-indexed from zero.
	if images[0].URL != "https://cdn.example.com/a.jpg" || images[0].Alt != "front" {
		t.Fatalf("unexpected first image %+v", images[0])
	}
	if images[0].Position != 0 || images[1].Position != 1 {
		t.Fatalf("expected re-indexed positions, got %+v", images)
	}
}

func TestNormalizeImagesSingleVariants(t *testing.T) {
	if images := NormalizeImages(json.RawMessage(`"https://cdn.example.com/only.jpg"`)); len(images) != 1 {
		t.Fatalf("expected single string to normalize, got %v", images)
	}
	if images := NormalizeImages(json.RawMessage(`{"image": "https://cdn.example.com/only.jpg"}`)); len(images) != 1 {
		t.Fatalf("expected single object to normalize, got %v", images)
	}
}

func TestNormalizeImagesDropsUnreadableEntries(t *testing.T) {
	raw := json.RawMessage(`[
		"https://cdn.example.com/ok.jpg",
		{"caption": "no url field"},
		42,
		""
	]`)
	images := NormalizeImages(raw)

	if len(images) != 1 {
		t.Fatalf("expected only the readable entry, got %v", images)
	}
	if images[0].URL != "https://cdn.example.com/ok.jpg" {
		t.Fatalf("unexpected image %+v", images[0])
	}
}

func TestNormalizeImagesEmptyAndInvalid(t *testing.T) {
	if images := NormalizeImages(nil); len(images) != 0 {
		t.Fatalf("expected empty slice for nil input, got %v", images)
	}
	if images := NormalizeImages(json.RawMessage(`[not json`)); len(images) != 0 {
		t.Fatalf("expected empty slice for invalid input, got %v", images)
	}
}

func TestPrimaryImageURL(t *testing.T) {
	raw := json.RawMessage(`[{"url": "https://cdn.example.com/a.jpg", "position": 0}]`)
	url := PrimaryImageURL(raw)
	if url == nil || *url != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected primary url %v", url)
	}
	if PrimaryImageURL(nil) != nil {
		t.Fatal("expected nil primary url for empty images")
	}
}
