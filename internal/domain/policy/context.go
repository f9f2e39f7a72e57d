package policy

import "github.com/holiman/uint256"

// Environment is the fixed, boundary-level record of ambient attributes
// supplied at decision time (spec.md section 3). It exists only for the
// duration of a single decision call; it is never persisted.
type Environment struct {
	// TimeWindow is a coarse classification of the time of day.
	// 0 = WORKING_HOURS, 1 = OFF_HOURS by reference convention; any other
	// value is permitted but carries no predefined meaning.
	TimeWindow uint8
	// EmergencyMode flags an active emergency override.
	EmergencyMode bool
	// SystemLoad is a 256-bit unsigned load figure, recommended range 0-100.
	SystemLoad uint256.Int
}

// NewEnvironment builds an Environment from the common (uint8, bool, uint64)
// boundary encoding, covering the recommended 0-100 system load range and
// any other value a caller wants to pass as a plain machine integer.
func NewEnvironment(timeWindow uint8, emergencyMode bool, systemLoad uint64) Environment {
	return Environment{
		TimeWindow:    timeWindow,
		EmergencyMode: emergencyMode,
		SystemLoad:    *uint256.NewInt(systemLoad),
	}
}
