package assessment

import "math"

// Severity labels, in ascending order.
const (
	SeverityNormal          = "Normal"
	SeverityMild            = "Mild"
	SeverityModerate        = "Moderate"
	SeveritySevere          = "Severe"
	SeverityExtremelySevere = "Extremely Severe"
)

// Threshold is one severity band. A final score s falls in the first band
// (ascending) with s <= Max. The last band of every table is open-ended.
type Threshold struct {
	Label string `json:"label"`
	Max   int    `json:"max_inclusive"`
}

// Open reports whether the band is the open-ended catch-all.
func (t Threshold) Open() bool {
	return t.Max == math.MaxInt
}

// Bands are on the final (doubled) score.
var thresholdTables = map[Subscale][]Threshold{
	Depression: {
		{SeverityNormal, 9},
		{SeverityMild, 13},
		{SeverityModerate, 20},
		{SeveritySevere, 27},
		{SeverityExtremelySevere, math.MaxInt},
	},
	Anxiety: {
		{SeverityNormal, 7},
		{SeverityMild, 9},
		{SeverityModerate, 14},
		{SeveritySevere, 19},
		{SeverityExtremelySevere, math.MaxInt},
	},
	Stress: {
		{SeverityNormal, 14},
		{SeverityMild, 18},
		{SeverityModerate, 25},
		{SeveritySevere, 33},
		{SeverityExtremelySevere, math.MaxInt},
	},
}

// Thresholds returns a copy of the ascending severity table for a subscale,
// or nil for an unknown subscale.
func Thresholds(s Subscale) []Threshold {
	table, ok := thresholdTables[s]
	if !ok {
		return nil
	}
	out := make([]Threshold, len(table))
	copy(out, table)
	return out
}

// Classify returns the severity label for a final score.
// Negative scores cannot occur through Score; they classify as the first band.
func Classify(s Subscale, final int) string {
	for _, t := range thresholdTables[s] {
		if final <= t.Max {
			return t.Label
		}
	}
	return ""
}
