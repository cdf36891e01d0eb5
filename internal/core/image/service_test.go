package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestProcessImage_DataURIToJPEG(t *testing.T) {
	s := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20, MaxDimension: 1600})
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 40, 20))

	out, err := s.ProcessImage(context.Background(), uri)

	require.NoError(t, err)
	img := decodeDataURI(t, out)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestProcessImage_RawBase64Resized(t *testing.T) {
	s := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20, MaxDimension: 50})

	out, err := s.ProcessImage(context.Background(), base64.StdEncoding.EncodeToString(pngBytes(t, 200, 100)))

	require.NoError(t, err)
	img := decodeDataURI(t, out)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestProcessImage_URL(t *testing.T) {
	body := pngBytes(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	s := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20, AllowedHosts: []string{"127.0.0.1"}})
	out, err := s.ProcessImage(context.Background(), srv.URL+"/meal.png")

	require.NoError(t, err)
	assert.Equal(t, 10, decodeDataURI(t, out).Bounds().Dx())
}

func TestProcessImage_URLHostNotAllowed(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write(pngBytes(t, 4, 4))
	}))
	defer srv.Close()

	s := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20})
	_, err := s.ProcessImage(context.Background(), srv.URL+"/meal.png")

	assert.True(t, errors.Is(err, common.ErrInvalidImage))
	assert.Contains(t, err.Error(), "not allowed")
	assert.Zero(t, hits)
}

func TestProcessImage_URLBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(bytes.Repeat([]byte{0xff}, 1<<20))
	}))
	defer srv.Close()

	s := NewService(config.ImageConfig{MaxSizeBytes: 1024, AllowedHosts: []string{"127.0.0.1"}})
	_, err := s.ProcessImage(context.Background(), srv.URL+"/huge.png")

	assert.True(t, errors.Is(err, common.ErrInvalidImage))
	assert.Contains(t, err.Error(), "exceeds maximum limit")
}

func TestProcessImage_Invalid(t *testing.T) {
	s := NewService(config.ImageConfig{MaxSizeBytes: 64})

	cases := map[string]string{
		"empty":     "",
		"not image": base64.StdEncoding.EncodeToString([]byte("hello")),
		"bad b64":   "data:image/png;base64,@@@",
		"too large": base64.StdEncoding.EncodeToString(pngBytes(t, 30, 30)),
	}
	for name, in := range cases {
		_, err := s.ProcessImage(context.Background(), in)
		assert.True(t, errors.Is(err, common.ErrInvalidImage), name)
	}
}
