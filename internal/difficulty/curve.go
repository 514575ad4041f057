// Package difficulty maps the remaining session time to threat variants and speeds.
// Every function here is pure.
package difficulty

import "github.com/tomz197/syntaxdefense/internal/loop/config"

// Variant is the threat flavor chosen for a spawn.
type Variant int

const (
	VariantLight Variant = iota
	VariantHeavy
	VariantFast
)

func (v Variant) String() string {
	switch v {
	case VariantHeavy:
		return "heavy"
	case VariantFast:
		return "fast"
	default:
		return "light"
	}
}

// Speeds in logical pixels per second.
const (
	BaseSpeed   = 150.0
	SpeedRamp   = 2.0 // Added per elapsed second
	HeavySpeed  = 80.0
	FastSpeed   = 350.0
	TokenSpeed  = 100.0
	DrawCeiling = 100 // Draws are taken from [0, DrawCeiling)
)

// Eligibility windows and thresholds.
const (
	FastWindow     = 20 // Fast threats possible when fewer seconds remain
	FastThreshold  = 20
	HeavyWindow    = 45
	HeavyThreshold = 30
)

// BaseThreatSpeed grows linearly as the session runs out.
func BaseThreatSpeed(timeRemaining int) float64 {
	return BaseSpeed + float64(config.SessionSeconds-timeRemaining)*SpeedRamp
}

// Classify picks a variant and speed from one draw in [0, DrawCeiling).
// Fast is tested before Heavy against the same draw, so inside the overlapping
// window a draw below FastThreshold can never yield Heavy.
func Classify(timeRemaining, draw int) (Variant, float64) {
	if timeRemaining < FastWindow && draw < FastThreshold {
		return VariantFast, FastSpeed
	}
	if timeRemaining < HeavyWindow && draw < HeavyThreshold {
		return VariantHeavy, HeavySpeed
	}
	return VariantLight, BaseThreatSpeed(timeRemaining)
}

// PanicRate is the tempo multiplier for feedback layers during the final seconds.
// 1.0 until PanicSeconds remain, then +0.02 per second down to 1.2 at zero.
func PanicRate(timeRemaining int) float64 {
	if timeRemaining > config.PanicSeconds {
		return 1.0
	}
	if timeRemaining < 0 {
		timeRemaining = 0
	}
	return 1.0 + float64(config.PanicSeconds-timeRemaining)*0.02
}
