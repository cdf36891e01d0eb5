package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 支援 WebP
)

const jpegQuality = 85

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Service 餐點照片處理：解碼、縮放後統一輸出為 JPEG data URI
type Service struct {
	maxSizeBytes int64
	maxDimension int
	allowedHosts map[string]bool
	httpClient   *resty.Client
}

// NewService 創建新的圖片處理服務
func NewService(cfg config.ImageConfig) *Service {
	hosts := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		hosts[strings.ToLower(strings.TrimSpace(h))] = true
	}
	return &Service{
		maxSizeBytes: cfg.MaxSizeBytes,
		maxDimension: cfg.MaxDimension,
		allowedHosts: hosts,
		httpClient:   resty.New().SetTimeout(30 * time.Second),
	}
}

// ProcessImage 接受 data URI、純 base64，或允許主機上的 http(s) URL
func (s *Service) ProcessImage(ctx context.Context, imageData string) (string, error) {
	raw, err := s.load(ctx, strings.TrimSpace(imageData))
	if err != nil {
		return "", common.ErrInvalidImage.Wrap(err)
	}
	out, err := s.normalize(raw)
	if err != nil {
		return "", common.ErrInvalidImage.Wrap(err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(out), nil
}

func (s *Service) load(ctx context.Context, imageData string) ([]byte, error) {
	if imageData == "" {
		return nil, fmt.Errorf("image data is empty")
	}

	var data []byte
	switch {
	case strings.HasPrefix(imageData, "http://"), strings.HasPrefix(imageData, "https://"):
		downloaded, err := s.download(ctx, imageData)
		if err != nil {
			return nil, err
		}
		data = downloaded
	case strings.HasPrefix(imageData, "data:image/"):
		idx := strings.Index(imageData, ",")
		if idx < 0 {
			return nil, fmt.Errorf("invalid base64 data format")
		}
		decoded, err := base64.StdEncoding.DecodeString(imageData[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data: %w", err)
		}
		data = decoded
	default:
		decoded, err := base64.StdEncoding.DecodeString(imageData)
		if err != nil {
			return nil, fmt.Errorf("invalid image data format: %w", err)
		}
		data = decoded
	}

	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return nil, fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes)
	}
	return data, nil
}

// download 只下載允許主機的圖片，讀取量不超過 maxSizeBytes+1
func (s *Service) download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	if !s.allowedHosts[strings.ToLower(u.Hostname())] {
		return nil, fmt.Errorf("image host %q is not allowed", u.Hostname())
	}

	resp, err := s.httpClient.R().SetContext(ctx).SetDoNotParseResponse(true).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status code %d", resp.StatusCode())
	}

	var r io.Reader = body
	if s.maxSizeBytes > 0 {
		r = io.LimitReader(body, s.maxSizeBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func (s *Service) normalize(data []byte) ([]byte, error) {
	img, _, err := decode(data)
	if err != nil {
		return nil, err
	}
	img = s.resize(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resize 長邊超過 maxDimension 時等比例縮小
func (s *Service) resize(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if s.maxDimension <= 0 || (w <= s.maxDimension && h <= s.maxDimension) {
		return img
	}

	nw, nh := s.maxDimension, s.maxDimension
	if w >= h {
		nh = h * s.maxDimension / w
	} else {
		nw = w * s.maxDimension / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if !supportedFormats[format] {
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}
	return img, format, nil
}
