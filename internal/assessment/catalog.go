// Package assessment holds the DASS-21 item catalog, the severity tables
// and the scorer. Everything here is static or pure.
package assessment

// Subscale identifies one of the three DASS-21 subscales.
type Subscale string

const (
	Depression Subscale = "D"
	Anxiety    Subscale = "A"
	Stress     Subscale = "S"
)

// Subscales lists the subscales in reporting order.
var Subscales = []Subscale{Depression, Anxiety, Stress}

// Name returns the human-readable subscale name.
func (s Subscale) Name() string {
	switch s {
	case Depression:
		return "Depression"
	case Anxiety:
		return "Anxiety"
	case Stress:
		return "Stress"
	}
	return string(s)
}

// Item is a single questionnaire statement.
type Item struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Subscale Subscale `json:"subscale"`
}

// ItemCount is the number of items in the instrument.
const ItemCount = 21

// Answer bounds.
const (
	MinAnswer = 0
	MaxAnswer = 3
)

var catalog = [ItemCount]Item{
	{1, "I found it hard to wind down", Stress},
	{2, "I was aware of dryness of my mouth", Anxiety},
	{3, "I couldn't seem to experience any positive feeling at all", Depression},
	{4, "I experienced breathing difficulty (e.g. excessively rapid breathing, breathlessness in the absence of physical exertion)", Anxiety},
	{5, "I found it difficult to work up the initiative to do things", Depression},
	{6, "I tended to over-react to situations", Stress},
	{7, "I experienced trembling (e.g. in the hands)", Anxiety},
	{8, "I felt that I was using a lot of nervous energy", Stress},
	{9, "I was worried about situations in which I might panic and make a fool of myself", Anxiety},
	{10, "I felt that I had nothing to look forward to", Depression},
	{11, "I found myself getting agitated", Stress},
	{12, "I found it difficult to relax", Stress},
	{13, "I felt down-hearted and blue", Depression},
	{14, "I was intolerant of anything that kept me from getting on with what I was doing", Stress},
	{15, "I felt I was close to panic", Anxiety},
	{16, "I was unable to become enthusiastic about anything", Depression},
	{17, "I felt I wasn't worth much as a person", Depression},
	{18, "I felt that I was rather touchy", Stress},
	{19, "I was aware of the action of my heart in the absence of physical exertion (e.g. sense of heart rate increase, heart missing a beat)", Anxiety},
	{20, "I felt scared without any good reason", Anxiety},
	{21, "I felt that life was meaningless", Depression},
}

var answerOptions = [MaxAnswer + 1]string{
	"Did not apply to me at all",
	"Applied to me to some degree, or some of the time",
	"Applied to me to a considerable degree, or a good part of time",
	"Applied to me very much, or most of the time",
}

// Items returns the ordered catalog. The returned slice is a copy.
func Items() []Item {
	out := make([]Item, ItemCount)
	copy(out, catalog[:])
	return out
}

// ItemAt returns the item at a zero-based catalog position.
func ItemAt(index int) (Item, bool) {
	if index < 0 || index >= ItemCount {
		return Item{}, false
	}
	return catalog[index], true
}

// Lookup returns the item with the given ID.
func Lookup(id int) (Item, bool) {
	return ItemAt(id - 1)
}

// AnswerOptions returns the labels for answers 0..3.
func AnswerOptions() []string {
	out := make([]string, len(answerOptions))
	copy(out, answerOptions[:])
	return out
}

// ValidAnswer reports whether v is an allowed answer value.
func ValidAnswer(v int) bool {
	return v >= MinAnswer && v <= MaxAnswer
}
