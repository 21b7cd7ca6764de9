package catalog_test

import (
	"bytes"
	"testing"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
)

func TestDataURI_RoundTrip(t *testing.T) {
	payload := []byte("%PDF-1.4 \x00\xff binary")
	uri := catalog.EncodeDataURI(catalog.MIMEPDF, payload)

	mime, data, err := catalog.DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if mime != catalog.MIMEPDF {
		t.Errorf("mime = %q, want %q", mime, catalog.MIMEPDF)
	}
	if !bytes.Equal(data, payload) {
		t.Error("payload mismatch")
	}
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	for _, in := range []string{
		"https://example.com/cover.jpg",
		"data:image/jpeg;base64",
		"data:text/plain,hello",
		"data:image/jpeg;base64,!!!",
	} {
		if _, _, err := catalog.DecodeDataURI(in); err == nil {
			t.Errorf("DecodeDataURI(%q) should fail", in)
		}
	}
}
