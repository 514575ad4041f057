package web

import (
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
)

// MapHand converts a normalized camera position (0..1 on both axes, as
// reported by hand tracking) to field coordinates. The camera image is
// mirrored horizontally and the hand's travel is amplified around the
// frame center so the whole field is reachable without leaving the frame.
func MapHand(nx, ny float64, field object.Screen) (float64, float64) {
	x := amplify(1 - nx)
	y := amplify(ny)
	return x * float64(field.Width), y * float64(field.Height)
}

func amplify(v float64) float64 {
	return min(1, max(0, (v-0.5)*config.HandSensitivity+0.5))
}

// clampToField keeps a pointer position inside the field.
func clampToField(x, y float64, field object.Screen) (float64, float64) {
	return min(float64(field.Width), max(0, x)), min(float64(field.Height), max(0, y))
}
