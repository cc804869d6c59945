package machine

// Compiled-in defaults, applied on cold start or whenever the NVM version
// stamp does not match the running build.

// gcode power-on defaults
const (
	DefaultPlane        = 0 // G17
	DefaultUnits        = 1 // G21 millimeters
	DefaultCoordSystem  = 0 // G54
	DefaultPathControl  = 2 // G64 continuous
	DefaultDistanceMode = 0 // G90 absolute
)

// global motion defaults
const (
	DefaultEnableAccel   = 1
	DefaultJunctionAccel = 100000
	DefaultMinSegmentLen = 0.03 // mm
	DefaultArcSegmentLen = 0.1  // mm
)

// serial line discipline defaults
const (
	DefaultIgnoreCR   = 0
	DefaultIgnoreLF   = 0
	DefaultEnableCR   = 0
	DefaultEnableEcho = 1
	DefaultEnableXon  = 1
)

// motor defaults (same for all four channels; MotorMap differs per channel)
const (
	DefaultStepAngle  = 1.8
	DefaultTravelRev  = 2.54 // mm per revolution
	DefaultMicrosteps = 8
	DefaultPolarity   = 0
	DefaultPowerMode  = 0
)

// DefaultMotorMap maps motor channels to the axis they drive by default.
var DefaultMotorMap = [Motors]float64{AxisX, AxisY, AxisZ, AxisA}

// LinearAxisDefaults holds defaults for the X, Y and Z axes.
type AxisDefaults struct {
	AxisMode       float64
	FeedrateMax    float64
	VelocityMax    float64
	TravelMax      float64
	JerkMax        float64
	JunctionDev    float64
	Radius         float64
	SwitchMode     float64
	SearchVelocity float64
	LatchVelocity  float64
	ZeroOffset     float64
}

// LinearDefaults apply to X, Y and Z.
var LinearDefaults = AxisDefaults{
	AxisMode:       1, // standard
	FeedrateMax:    800,
	VelocityMax:    800,
	TravelMax:      400,
	JerkMax:        50000000,
	JunctionDev:    0.05,
	SwitchMode:     1,
	SearchVelocity: 500,
	LatchVelocity:  100,
	ZeroOffset:     5,
}

// RotaryDefaults apply to A, B and C. Values are degrees-based and are never
// unit converted.
var RotaryDefaults = AxisDefaults{
	AxisMode:       1,
	FeedrateMax:    48000,
	VelocityMax:    48000,
	TravelMax:      400,
	JerkMax:        24000000000,
	JunctionDev:    0.05,
	Radius:         1,
	SwitchMode:     0,
	SearchVelocity: 6000,
	LatchVelocity:  1000,
	ZeroOffset:     0,
}
