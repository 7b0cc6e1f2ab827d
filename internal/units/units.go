// Package units provides shared constants and validation for length units
package units

// Unit constants
const (
	Metres      = "m"
	Centimetres = "cm"
	Millimetres = "mm"
	Inches      = "in"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Metres, Centimetres, Millimetres, Inches}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, cm, mm, in"
}

// ConvertLength converts a length from metres to the target units.
// Measurements are produced in metres.
func ConvertLength(metres float64, targetUnits string) float64 {
	switch targetUnits {
	case Centimetres:
		return metres * 100
	case Millimetres:
		return metres * 1000
	case Inches:
		return metres / 0.0254
	default:
		return metres
	}
}

// Precision returns the number of decimals worth printing in unit.
func Precision(unit string) int {
	switch unit {
	case Metres:
		return 3
	case Millimetres:
		return 0
	default:
		return 1
	}
}
