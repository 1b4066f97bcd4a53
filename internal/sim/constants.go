package sim

// Engine tolerances. These are numerical-stability knobs and carry no
// physical meaning; reference collision counts depend on their exact values.
const (
	Epsilon    = 1e-10  // relative/absolute speed below which an axis never fires
	TimeOffset = 1e-7   // added to post-event sample times so they stay increasing
	MaxEvents  = 100000 // hard cap on processed events per run
)

// Default scene layout.
const (
	DefaultX1           = 0.5 // driver block
	DefaultX2           = 0.2 // wall-facing block
	DefaultWallPosition = 0.0
	DefaultBlockWidth   = 0.1
	DefaultTotalTime    = 10.0
	DefaultFPS          = 30
)
