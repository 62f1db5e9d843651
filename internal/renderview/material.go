package renderview

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// RenderMaterial is the appearance of surfaces. Color is signed ARGB.
type RenderMaterial struct {
	ID      string
	Color   int32
	Opacity float64
}

// DisplayStyle is the appearance of curves.
type DisplayStyle struct {
	ID         string
	Color      int32
	LineWeight float64
}

// Sentinel hashes for render views without any appearance.
var (
	NullRenderMaterialHash = Classify(Mesh, "")
	NullDisplayStyleHash   = Classify(Line, "")
)

// Classify returns the material hash of a geometry kind and appearance
// signature. Equal inputs always give equal hashes; distinct inputs may
// collide and then share a batch.
func Classify(kind GeometryType, signature string) int32 {
	return hashCode(kind.hashKey() + signature)
}

// AppearanceSignature renders the authoritative appearance source as
// "color/opacity" or "color/lineWeight". The render material wins over the
// display style; with neither the signature is empty.
func AppearanceSignature(mat *RenderMaterial, style *DisplayStyle) string {
	switch {
	case mat != nil:
		return strconv.FormatInt(int64(mat.Color), 10) + "/" + formatNumber(mat.Opacity)
	case style != nil:
		return strconv.FormatInt(int64(style.Color), 10) + "/" + formatNumber(style.LineWeight)
	default:
		return ""
	}
}

// hashCode is the 31-multiplier rolling hash over UTF-16 code units with
// wrapping int32 arithmetic.
func hashCode(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

// formatNumber prints v the way a JavaScript Number is stringified, so hashes
// stay stable for data shared with web viewers.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		// Go pads the exponent to two digits, JS does not.
		s = strings.Replace(s, "e-0", "e-", 1)
		s = strings.Replace(s, "e+0", "e+", 1)
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
