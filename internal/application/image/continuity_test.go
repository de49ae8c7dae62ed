package image

import (
	"strings"
	"testing"
)

func TestBuildPartsFirstScene(t *testing.T) {
	parts := BuildParts("Style: test", "a lighthouse at dusk", "3:4", nil)

	if len(parts) != 1 {
		t.Fatalf("expected 1 part without previous image, got %d", len(parts))
	}
	text := parts[0].Text
	if !strings.HasPrefix(text, "Create this image with 3:4 aspect ratio. ") {
		t.Errorf("aspect ratio prefix missing: %q", text)
	}
	if !strings.Contains(text, "Style: test\na lighthouse at dusk") {
		t.Errorf("style and prompt not joined as expected: %q", text)
	}
}

func TestBuildPartsWithPreviousImageOrdering(t *testing.T) {
	prev := &PreviousImage{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}
	parts := BuildParts("Style: test", "the keeper climbs the stairs", "3:4", prev)

	if len(parts) != 3 {
		t.Fatalf("expected 3 parts with previous image, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/jpeg" {
		t.Errorf("first part must be the previous JPEG image")
	}
	if parts[1].Text != "Maintain strict visual continuity with the provided image. "+
		"Characters, faces, clothing, lighting, and environment must remain consistent." {
		t.Errorf("continuity instruction altered: %q", parts[1].Text)
	}
	if parts[2].InlineData != nil || parts[2].Text == "" {
		t.Errorf("last part must be the text prompt")
	}
}
