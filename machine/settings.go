package machine

// Firmware identity. The build number doubles as the NVM version stamp:
// a stored profile written by a different build is discarded and rebuilt
// from the compiled defaults.
const (
	FirmwareVersion = 0.93
	FirmwareBuild   = 108.04
)

// Motors and axes are fixed at build time.
const (
	Motors = 4 // motor channels 1-4
	Axes   = 6 // X, Y, Z, A, B, C
	Coords = 6 // coordinate systems G54-G59
)

// Axis indices into Settings.Axes and position vectors.
const (
	AxisX = iota
	AxisY
	AxisZ
	AxisA
	AxisB
	AxisC
)

// Unit conversion factors. All internal values are millimeters (or degrees
// for rotary axes); conversion to inches happens only at the I/O boundary.
const (
	MMPerInch = 25.4
	InchPerMM = 1.0 / MMPerInch
)

// Status report interval handling. The requested interval in milliseconds is
// clamped to [StatusIntervalMinMS, StatusIntervalMaxMS] and stored as a count
// of estimated segment ticks.
const (
	StatusIntervalMinMS   = 30
	StatusIntervalMaxMS   = 1000
	StatusIntervalDefault = 100
	EstdSegmentUsec       = 5000 // estimated segment time in microseconds
	StatusSlots           = 20   // fixed size of the status report vector
)

// MotorSettings holds the configuration for one motor channel.
type MotorSettings struct {
	MotorMap     uint8   // axis this motor drives (0=X, 1=Y, ...)
	StepAngle    float64 // full step angle in degrees
	TravelRev    float64 // travel per motor revolution (mm)
	Microsteps   uint8   // microsteps per full step [1,2,4,8]
	Polarity     uint8   // direction polarity [0,1]
	PowerMode    uint8   // power management mode [0,1]
	StepsPerUnit float64 // derived: steps per mm of travel
}

// AxisSettings holds the configuration for one axis.
type AxisSettings struct {
	AxisMode       uint8   // see AxisModeLabels
	FeedrateMax    float64 // mm/min (deg/min for rotary)
	VelocityMax    float64 // mm/min
	TravelMax      float64 // mm
	JerkMax        float64 // mm/min^3
	JunctionDev    float64 // mm
	Radius         float64 // rotary axes only: effective radius (mm)
	SwitchMode     uint8   // limit switch mode [0,1]
	SearchVelocity float64 // homing search velocity (mm/min)
	LatchVelocity  float64 // homing latch velocity (mm/min)
	ZeroOffset     float64 // offset from switch to axis zero (mm)
}

// Settings is the live parameter storage: one explicitly owned aggregate,
// created at startup and mutated only by the params engine.
type Settings struct {
	Version         float64 // config version (the NVM version stamp)
	FirmwareVersion float64 // reported by the fv parameter; read-only
	FirmwareBuild   float64 // reported by the fb parameter; read-only

	// gcode power-on defaults
	SelectPlane  uint8 // G17, G18, G19
	UnitsMode    uint8 // G20, G21
	CoordSystem  uint8 // G54-G59
	PathControl  uint8 // G61, G61.1, G64
	DistanceMode uint8 // G90, G91

	// global motion settings
	EnableAcceleration uint8
	JunctionAccel      float64 // mm/min^2
	MinSegmentLen      float64 // mm
	ArcSegmentLen      float64 // mm
	EstdSegmentTime    float64 // uSec

	// serial line discipline flags (mirrored into the live transport)
	IgnoreCR      uint8
	IgnoreLF      uint8
	EnableCR      uint8
	EnableEcho    uint8
	EnableXonXoff uint8

	StatusIntervalTicks uint8 // derived from the requested ms interval

	Motors  [Motors]MotorSettings
	Axes    [Axes]AxisSettings
	Offsets [Coords][Axes]float64 // coordinate system offsets (mm)

	// status report specification: descriptor indices of the parameters
	// reported by the status formatter, in slot order
	StatusReport [StatusSlots]uint32
}

// NewSettings returns a zeroed Settings aggregate. Values are populated by
// the params engine from NVM or compiled defaults at boot.
func NewSettings() *Settings {
	return &Settings{}
}
