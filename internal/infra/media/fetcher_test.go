package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for x := 0; x < 32; x++ {
		img.Set(x, x%16, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestFetchDataURL(t *testing.T) {
	f := NewFetcher(0, 0, logger.SetupForTesting())
	raw := testPNG(t)

	res, err := f.Fetch(context.Background(), whatsapp.MediaImage, Source{
		Data: "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.MimeType != "image/png" || !bytes.Equal(res.Data, raw) {
		t.Fatalf("Fetch() = %s, %d bytes", res.MimeType, len(res.Data))
	}
}

func TestFetchPlainBase64DetectsType(t *testing.T) {
	f := NewFetcher(0, 0, logger.SetupForTesting())

	res, err := f.Fetch(context.Background(), whatsapp.MediaImage, Source{
		Data: base64.StdEncoding.EncodeToString(testPNG(t)),
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.MimeType != "image/png" {
		t.Fatalf("MimeType = %q, want image/png", res.MimeType)
	}
}

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	f := NewFetcher(0, 0, logger.SetupForTesting())

	res, err := f.Fetch(context.Background(), whatsapp.MediaDocument, Source{URL: srv.URL + "/files/report.pdf"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.MimeType != "application/pdf" || res.FileName != "report.pdf" {
		t.Fatalf("Fetch() = %+v", res)
	}

	_, err = f.Fetch(context.Background(), whatsapp.MediaDocument, Source{URL: srv.URL + "/missing.pdf"})
	if !errors.Is(err, message.ErrMediaFetchFailed) {
		t.Fatalf("Fetch() error = %v, want ErrMediaFetchFailed", err)
	}
}

func TestFetchFailures(t *testing.T) {
	f := NewFetcher(8, 0, logger.SetupForTesting())

	tests := []struct {
		name string
		kind whatsapp.MediaKind
		src  Source
	}{
		{"no source", whatsapp.MediaImage, Source{}},
		{"bad base64", whatsapp.MediaImage, Source{Data: "!!!"}},
		{"too large", whatsapp.MediaDocument, Source{Upload: bytes.Repeat([]byte("a"), 9)}},
		{"wrong type", whatsapp.MediaImage, Source{Upload: []byte("hello")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.kind, tt.src)
			if !errors.Is(err, message.ErrMediaFetchFailed) {
				t.Fatalf("Fetch() error = %v, want ErrMediaFetchFailed", err)
			}
		})
	}
}

func TestAccepts(t *testing.T) {
	if !Accepts(whatsapp.MediaAudio, "application/ogg") || !Accepts(whatsapp.MediaVideo, "video/mp4") {
		t.Fatalf("expected audio/ogg and video/mp4 to be accepted")
	}
	if Accepts(whatsapp.MediaSticker, "video/mp4") || Accepts(whatsapp.MediaKind("gif"), "image/gif") {
		t.Fatalf("unexpected acceptance")
	}
}

func TestStickerConvert(t *testing.T) {
	sc := NewStickerConverter(logger.SetupForTesting())

	out, err := sc.Convert(testPNG(t))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if ct := http.DetectContentType(out); ct != "image/webp" {
		t.Fatalf("Convert() content type = %q, want image/webp", ct)
	}

	// WEBP é mantido como está
	again, err := sc.Convert(out)
	if err != nil || !bytes.Equal(again, out) {
		t.Fatalf("Convert(webp) changed data, err = %v", err)
	}

	if _, err := sc.Convert([]byte("not an image")); !errors.Is(err, message.ErrMediaFetchFailed) {
		t.Fatalf("Convert(garbage) error = %v, want ErrMediaFetchFailed", err)
	}
}
