package calendar

import "github.com/hpungsan/serene/internal/journal"

// Color is a named swatch.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Score colors.
var (
	Gray    = Color{"gray", "#d1d5db"}
	Green   = Color{"green", "#22c55e"}
	Lime    = Color{"lime", "#84cc16"}
	Yellow  = Color{"yellow", "#eab308"}
	Amber   = Color{"amber", "#f59e0b"}
	Red     = Color{"red", "#ef4444"}
	DarkRed = Color{"dark-red", "#991b1b"}
)

// scoreBuckets are inclusive upper bounds on D+A+S final totals.
var scoreBuckets = []struct {
	max   int
	color Color
}{
	{20, Green},
	{40, Lime},
	{60, Yellow},
	{80, Amber},
	{100, Red},
}

// ScoreColor maps a D+A+S total to its bucket color. present=false (no
// entry for the day) is gray.
func ScoreColor(total int, present bool) Color {
	if !present {
		return Gray
	}
	for _, b := range scoreBuckets {
		if total <= b.max {
			return b.color
		}
	}
	return DarkRed
}

var tagColors = map[string]Color{
	journal.TagHappy:    {"sunflower", "#facc15"},
	journal.TagCalm:     {"teal", "#14b8a6"},
	journal.TagGrateful: {"pink", "#ec4899"},
	journal.TagTired:    {"slate", "#64748b"},
	journal.TagSad:      {"blue", "#3b82f6"},
	journal.TagAnxious:  {"purple", "#a855f7"},
	journal.TagStressed: {"orange", "#f97316"},
	journal.TagAngry:    {"crimson", "#be123c"},
}

// TagColor returns the fixed color for a mood tag.
func TagColor(tag string) (Color, bool) {
	c, ok := tagColors[tag]
	return c, ok
}

// Legend lists score buckets then tag colors, for display.
func Legend() []LegendItem {
	items := []LegendItem{
		{Label: "No entry", Color: Gray},
		{Label: "0–20", Color: Green},
		{Label: "21–40", Color: Lime},
		{Label: "41–60", Color: Yellow},
		{Label: "61–80", Color: Amber},
		{Label: "81–100", Color: Red},
		{Label: "101+", Color: DarkRed},
	}
	for _, tag := range journal.MoodTags {
		items = append(items, LegendItem{Label: tag, Color: tagColors[tag]})
	}
	return items
}

// LegendItem is one row of the calendar legend.
type LegendItem struct {
	Label string `json:"label"`
	Color Color  `json:"color"`
}
