// internal/glycemic/classify.go
package glycemic

import "mcp-glucoguide/internal/models"

// Classify maps a GL value onto the general three tier scale.
func Classify(gl float64) models.SpikeLevel {
	switch {
	case gl <= LowGLMax:
		return models.SpikeLow
	case gl <= ModerateGLMax:
		return models.SpikeModerate
	default:
		return models.SpikeHigh
	}
}

// Improved reports whether after is strictly less severe than before.
func Improved(before, after models.SpikeLevel) bool {
	return after.Severity() < before.Severity()
}
