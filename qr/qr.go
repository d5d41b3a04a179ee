// Package qr renders link QR codes as PNG images.
package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/url"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"

	"qrlink/models"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024

	// Logo dimensions are stored relative to the 220px editor preview.
	referenceSize = 220
)

// ErrBadImage means the logo data URL could not be decoded.
var ErrBadImage = errors.New("invalid logo image")

// ClampSize bounds a requested size to [MinSize, MaxSize]; zero means DefaultSize.
func ClampSize(size int) int {
	switch {
	case size == 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// Render encodes payload with opts and returns the PNG bytes.
func Render(payload string, opts models.QROptions, size int) ([]byte, error) {
	size = ClampSize(size)

	code, err := qrcode.New(payload, recoveryLevel(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("encoding qr: %w", err)
	}

	if c, err := ParseHexColor(opts.FgColor); err == nil {
		code.ForegroundColor = c
	}
	if c, err := ParseHexColor(opts.BgColor); err == nil {
		code.BackgroundColor = c
	}

	if opts.ImageSettings == nil {
		return code.PNG(size)
	}

	// Image grows past size when the symbol needs more pixels than requested.
	symbol := code.Image(size)
	canvas := image.NewRGBA(image.Rect(0, 0, symbol.Bounds().Dx(), symbol.Bounds().Dy()))
	draw.Draw(canvas, canvas.Bounds(), symbol, symbol.Bounds().Min, draw.Src)

	if err := overlayLogo(canvas, *opts.ImageSettings, code.BackgroundColor); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch level {
	case "L":
		return qrcode.Low
	case "M":
		return qrcode.Medium
	case "Q":
		return qrcode.High
	default:
		return qrcode.Highest
	}
}

func overlayLogo(canvas *image.RGBA, s models.ImageSettings, bg color.Color) error {
	logo, err := DecodeDataURL(s.Src)
	if err != nil {
		return err
	}

	size := canvas.Bounds().Dx()
	w := s.Width * size / referenceSize
	h := s.Height * size / referenceSize
	if w <= 0 || h <= 0 {
		return nil
	}
	if w > size {
		w = size
	}
	if h > size {
		h = size
	}

	x0 := (size - w) / 2
	y0 := (size - h) / 2
	dst := image.Rect(x0, y0, x0+w, y0+h)

	if s.Excavate {
		draw.Draw(canvas, dst, image.NewUniform(bg), image.Point{}, draw.Src)
	}
	xdraw.CatmullRom.Scale(canvas, dst, logo, logo.Bounds(), xdraw.Over, nil)
	return nil
}

// DecodeDataURL decodes a base64 image data URL such as "data:image/png;base64,....".
func DecodeDataURL(src string) (image.Image, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data URL", ErrBadImage)
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing data", ErrBadImage)
	}

	var raw []byte
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
		}
		raw = b
	} else {
		s, err := url.PathUnescape(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
		}
		raw = []byte(s)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return img, nil
}

// ParseHexColor parses #rgb or #rrggbb.
func ParseHexColor(s string) (color.RGBA, error) {
	if !models.ValidColor(s) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
