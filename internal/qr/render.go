// Package qr renders a URL into a QR-code PNG.
package qr

import (
	"fmt"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"qrmanager/internal/apperr"
)

// Size bounds for the per-module pixel scale.
const (
	MinSize = 1
	MaxSize = 64
)

// Colors are accepted by name or as #rrggbb. The name set matches what the
// configuration surface documents for FILL_COLOR / BACK_COLOR.
var namedColors = map[string]color.RGBA{
	"black":   {0x00, 0x00, 0x00, 0xff},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"red":     {0xff, 0x00, 0x00, 0xff},
	"green":   {0x00, 0x80, 0x00, 0xff},
	"blue":    {0x00, 0x00, 0xff, 0xff},
	"yellow":  {0xff, 0xff, 0x00, 0xff},
	"orange":  {0xff, 0xa5, 0x00, 0xff},
	"purple":  {0x80, 0x00, 0x80, 0xff},
	"gray":    {0x80, 0x80, 0x80, 0xff},
	"magenta": {0xff, 0x00, 0xff, 0xff},
	"cyan":    {0x00, 0xff, 0xff, 0xff},
}

// ParseColor resolves a color name or #rrggbb value.
func ParseColor(s string) (color.Color, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[key]; ok {
		return c, nil
	}
	if strings.HasPrefix(key, "#") && len(key) == 7 {
		var r, g, b uint8
		if _, err := fmt.Sscanf(key, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{r, g, b, 0xff}, nil
		}
	}
	return nil, apperr.New(apperr.KindValidation, "unknown color %q", s)
}

// Render encodes url into a PNG with the given fill and background colors.
// size is the pixel scale per QR module, bounded by MinSize and MaxSize.
func Render(url, fill, back string, size int) ([]byte, error) {
	if size < MinSize || size > MaxSize {
		return nil, apperr.New(apperr.KindValidation, "size must be between %d and %d", MinSize, MaxSize)
	}
	fc, err := ParseColor(fill)
	if err != nil {
		return nil, err
	}
	bc, err := ParseColor(back)
	if err != nil {
		return nil, err
	}
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "url cannot be encoded as a qr code")
	}
	q.ForegroundColor = fc
	q.BackgroundColor = bc
	// Negative size selects pixels-per-module scaling.
	png, err := q.PNG(-size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}
