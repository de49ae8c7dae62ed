package image

import "testing"

func TestResolveStyleKnownLabels(t *testing.T) {
	cases := map[string]string{
		"Cinematic":  "Style: Cinematic film photography, dramatic lighting, professional cinematography.",
		"cinematic":  "Style: Cinematic film photography, dramatic lighting, professional cinematography.",
		"ANIME":      "Style: Anime art style, vibrant colors, Japanese animation aesthetic.",
		"Watercolor": "Style: Watercolor painting, soft brush strokes.",
		"noir":       "Style: Film noir, high contrast black and white, dramatic shadows.",
		"Cyberpunk":  "Style: Cyberpunk aesthetic, neon lights, futuristic city.",
	}
	for label, want := range cases {
		if got := ResolveStyle(label); got != want {
			t.Errorf("ResolveStyle(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestResolveStyleUnknownLabelPreserved(t *testing.T) {
	got := ResolveStyle("Ukiyo-e Woodblock")
	want := "Style: Ukiyo-e Woodblock"
	if got != want {
		t.Errorf("ResolveStyle unknown = %q, want %q", got, want)
	}
}
