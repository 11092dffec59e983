// internal/glycemic/calibration.go
package glycemic

// Per-gram reduction rates and caps for the macronutrient modifiers. The
// rates put the cap at 10 g fiber, 25 g protein and 15 g fat.
const (
	FiberRatePerGram   = 0.02
	ProteinRatePerGram = 0.008
	FatRatePerGram     = 0.01

	MaxFiberModifier   = 0.20
	MaxProteinModifier = 0.20
	MaxFatModifier     = 0.15

	// MaxTotalReduction bounds the additive sum of all three modifiers.
	MaxTotalReduction = 0.45
)

// GI bounds. Some sugars score above 100 on the glucose scale.
const (
	MinGI = 0.0
	MaxGI = 110.0
)

// Upper-inclusive GL bands for the general spike classification.
const (
	LowGLMax      = 10.0
	ModerateGLMax = 19.0
)
