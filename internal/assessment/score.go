package assessment

// Responses maps item ID to answer value.
type Responses map[int]int

// Clone returns an independent copy. A nil receiver yields an empty map.
func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FirstUnanswered returns the zero-based catalog index of the first item
// without an answer, or -1 when every item is answered.
func (r Responses) FirstUnanswered() int {
	for i, item := range catalog {
		if _, ok := r[item.ID]; !ok {
			return i
		}
	}
	return -1
}

// Complete reports whether every catalog item has an answer.
func (r Responses) Complete() bool {
	return r.FirstUnanswered() == -1
}

// Answered counts catalog items that have an answer.
func (r Responses) Answered() int {
	n := 0
	for _, item := range catalog {
		if _, ok := r[item.ID]; ok {
			n++
		}
	}
	return n
}

// SubscaleResult is the score for one subscale.
type SubscaleResult struct {
	Raw      int    `json:"raw"`
	Final    int    `json:"final"`
	Severity string `json:"severity"`
}

// Result is the scored instrument.
type Result struct {
	D        SubscaleResult `json:"D"`
	A        SubscaleResult `json:"A"`
	S        SubscaleResult `json:"S"`
	TotalRaw int            `json:"total_raw"`
}

// Subscale returns the result for s.
func (r Result) Subscale(s Subscale) SubscaleResult {
	switch s {
	case Depression:
		return r.D
	case Anxiety:
		return r.A
	default:
		return r.S
	}
}

// FinalTotal is D+A+S final scores, the value the calendar colors on.
func (r Result) FinalTotal() int {
	return r.D.Final + r.A.Final + r.S.Final
}

// Score computes subscale scores and severities. Missing answers count as 0,
// so Score is total over any Responses, including nil.
func Score(responses Responses) Result {
	raw := make(map[Subscale]int, len(Subscales))
	for _, item := range catalog {
		raw[item.Subscale] += responses[item.ID]
	}

	sub := func(s Subscale) SubscaleResult {
		final := raw[s] * 2
		return SubscaleResult{
			Raw:      raw[s],
			Final:    final,
			Severity: Classify(s, final),
		}
	}

	return Result{
		D:        sub(Depression),
		A:        sub(Anxiety),
		S:        sub(Stress),
		TotalRaw: raw[Depression] + raw[Anxiety] + raw[Stress],
	}
}
