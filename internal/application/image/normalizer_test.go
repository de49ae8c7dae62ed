package image

import (
	"bytes"
	"encoding/base64"
	"testing"

	"story-scene-api/internal/workflow/port"
	"story-scene-api/pkg/errors"
)

func TestExtractImageNestedAndFlatEquivalent(t *testing.T) {
	data := pngBytes(t)

	fromNested, err := ExtractImage(nestedResponse(data))
	if err != nil {
		t.Fatalf("nested extract failed: %v", err)
	}
	fromFlat, err := ExtractImage(flatResponse(data))
	if err != nil {
		t.Fatalf("flat extract failed: %v", err)
	}

	if !bytes.Equal(fromNested, fromFlat) {
		t.Errorf("nested and flat responses must yield identical bytes")
	}
	if !bytes.Equal(fromNested, data) {
		t.Errorf("extracted bytes differ from original payload")
	}
}

func TestExtractImageBase64Fallback(t *testing.T) {
	data := pngBytes(t)
	encoded := []byte(base64.StdEncoding.EncodeToString(data))

	got, err := ExtractImage(flatResponse(encoded))
	if err != nil {
		t.Fatalf("base64 extract failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("base64 payload must decode to the original image bytes")
	}
}

func TestExtractImageNoImageParts(t *testing.T) {
	resp := &port.ImageResponse{
		Parts: []*port.ImagePart{
			{Text: "sorry, only text"},
		},
	}

	_, err := ExtractImage(resp)
	appErr := errors.AsAppError(err)
	if appErr.Code != errors.CodeNoImageReturned {
		t.Errorf("expected CodeNoImageReturned, got %s", appErr.Code)
	}
}

func TestExtractImageMalformedStructure(t *testing.T) {
	_, err := ExtractImage(&port.ImageResponse{})
	appErr := errors.AsAppError(err)
	if appErr.Code != errors.CodeMalformedResponse {
		t.Errorf("expected CodeMalformedResponse, got %s", appErr.Code)
	}

	_, err = ExtractImage(nil)
	appErr = errors.AsAppError(err)
	if appErr.Code != errors.CodeMalformedResponse {
		t.Errorf("expected CodeMalformedResponse for nil response, got %s", appErr.Code)
	}
}

func TestExtractImageGarbagePayloadSkipped(t *testing.T) {
	resp := &port.ImageResponse{
		Parts: []*port.ImagePart{
			{InlineData: &port.ImageBlob{MIMEType: "image/png", Data: []byte("not an image at all")}},
		},
	}

	_, err := ExtractImage(resp)
	appErr := errors.AsAppError(err)
	if appErr.Code != errors.CodeNoImageReturned {
		t.Errorf("expected CodeNoImageReturned for garbage payload, got %s", appErr.Code)
	}
}
