package layout

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// ToMM converts a layout length (pt) to millimeters.
func ToMM(pt float64) float64 { return pt * PtToMm }

// ToPT converts millimeters to points.
func ToPT(mm float64) float64 { return mm * MmToPt }
