package engine

import (
	"fmt"
	"math"
)

// PaletteColor returns the colour of the index-th graph out of max: hues
// spread evenly around the wheel at saturation 0.9 and full brightness.
func PaletteColor(index, max int) string {
	if max <= 0 {
		max = 1
	}
	r, g, b := hsbToRGB(float64(index)/float64(max), 0.9, 1)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hsbToRGB(hue, saturation, brightness float64) (uint8, uint8, uint8) {
	if saturation == 0 {
		v := channel(brightness)
		return v, v, v
	}
	h := (hue - math.Floor(hue)) * 6
	f := h - math.Floor(h)
	p := brightness * (1 - saturation)
	q := brightness * (1 - saturation*f)
	t := brightness * (1 - saturation*(1-f))

	switch int(h) {
	case 0:
		return channel(brightness), channel(t), channel(p)
	case 1:
		return channel(q), channel(brightness), channel(p)
	case 2:
		return channel(p), channel(brightness), channel(t)
	case 3:
		return channel(p), channel(q), channel(brightness)
	case 4:
		return channel(t), channel(p), channel(brightness)
	default:
		return channel(brightness), channel(p), channel(q)
	}
}

func channel(v float64) uint8 {
	return uint8(v*255 + 0.5)
}
