package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/journal"
	"github.com/hpungsan/serene/internal/ops"
	"github.com/hpungsan/serene/internal/session"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	env      *ops.Env
	renderer *Renderer
}

// HandleAssessment handles GET /assessment: the current item.
func (h *Handlers) HandleAssessment(w http.ResponseWriter, r *http.Request) {
	h.renderAssessment(w, r, "")
}

func (h *Handlers) renderAssessment(w http.ResponseWriter, r *http.Request, notice string) {
	status := ops.Status(h.env)
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, status)
		return
	}

	p := status.Progress
	data := AssessmentPageData{
		PageData:  h.renderer.page("Assessment", "assessment"),
		Progress:  p,
		First:     p.Cursor == 0,
		Last:      p.Cursor == assessment.ItemCount-1,
		CanSubmit: p.Status == session.StatusComplete,
		Percent:   p.Answered * 100 / p.Total,
		Today:     h.env.Today(),
		Notice:    notice,
	}
	for v, label := range assessment.AnswerOptions() {
		data.Choices = append(data.Choices, AnswerChoice{
			Value:    v,
			Label:    label,
			Selected: p.Value != nil && *p.Value == v,
		})
	}
	h.renderer.renderPage(w, r, "assessment", data)
}

// HandleAnswer handles POST /assessment/answer: record one answer.
// The form carries item_id, value and an optional advance flag.
func (h *Handlers) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	itemID, err := formInt(r, "item_id")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	value, err := formInt(r, "value")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Answer(r.Context(), h.env, ops.AnswerInput{
		ItemID:  itemID,
		Value:   value,
		Advance: parseBool(r.FormValue("advance")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.afterAction(w, r)
}

// HandleNext handles POST /assessment/next.
func (h *Handlers) HandleNext(w http.ResponseWriter, r *http.Request) {
	p, err := ops.Advance(h.env)
	if err != nil {
		if wantsJSON(r) {
			h.renderer.renderError(w, r, err)
			return
		}
		// Stay on the item and explain why
		h.renderAssessment(w, r, "Choose an answer before moving on.")
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.afterAction(w, r)
}

// HandleBack handles POST /assessment/back.
func (h *Handlers) HandleBack(w http.ResponseWriter, r *http.Request) {
	p := ops.Retreat(h.env)
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.afterAction(w, r)
}

// HandleRetake handles POST /assessment/retake.
func (h *Handlers) HandleRetake(w http.ResponseWriter, r *http.Request) {
	p := ops.Retake(r.Context(), h.env)
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.afterAction(w, r)
}

// HandleSubmit handles POST /assessment/submit: score, record and
// navigate to the results page.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	ctx, slot := withIntentSlot(r.Context())
	done, err := ops.Submit(ctx, h.env, ops.SubmitInput{Date: strings.TrimSpace(r.FormValue("date"))})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	target := resultsURL(slot.done)
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"completed": done,
			"redirect":  target,
		})
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// afterAction returns the browser to the assessment page.
func (h *Handlers) afterAction(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		h.renderAssessment(w, r, "")
		return
	}
	http.Redirect(w, r, "/assessment", http.StatusSeeOther)
}

// HandleResults handles GET /results: latest scores and trend.
func (h *Handlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Results(r.Context(), h.env)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "results", ResultsPageData{
		PageData: h.renderer.page("Results", "results"),
		Results:  result,
	})
}

// HandleCalendar handles GET /calendar?year=&month=: the month view.
func (h *Handlers) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month := 0, 0
	// ?month=2025-03 is accepted as well as ?year=2025&month=3
	if ym := r.URL.Query().Get("month"); strings.Contains(ym, "-") {
		t, err := datekey.Parse(ym + "-01")
		if err != nil {
			h.renderer.renderError(w, r, errors.NewValidation("month", "month must be YYYY-MM or 1-12"))
			return
		}
		year, month = t.Year(), int(t.Month())
	} else {
		var err error
		if year, err = queryInt(r, "year"); err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		if month, err = queryInt(r, "month"); err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
	}

	result, err := ops.Month(r.Context(), h.env, ops.MonthInput{Year: year, Month: month})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "calendar", CalendarPageData{
		PageData: h.renderer.page(result.Title, "calendar"),
		Month:    result,
	})
}

// HandleWeek handles GET /calendar/week?date=: the week strip.
func (h *Handlers) HandleWeek(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Week(r.Context(), h.env, ops.WeekInput{Date: strings.TrimSpace(r.URL.Query().Get("date"))})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "week", WeekPageData{
		PageData: h.renderer.page(result.Label, "calendar"),
		Week:     result,
	})
}

// HandleJournal handles GET /journal/{date}: view and edit one day.
func (h *Handlers) HandleJournal(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if err := datekey.Validate(date); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	entry, err := ops.JournalGet(r.Context(), h.env, date)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, entry)
		return
	}

	data := JournalPageData{
		PageData: h.renderer.page("Journal "+date, "calendar"),
		Date:     date,
		Entry:    entry,
		MoodTags: journal.MoodTags,
	}
	for i := 0; i <= journal.MaxMoodIntensity; i++ {
		data.Intensities = append(data.Intensities, i)
	}
	if entry != nil && entry.Note != "" {
		data.NoteHTML = renderMarkdown(entry.Note)
	}
	if scores, err := ops.HistoryGet(r.Context(), h.env, ops.HistoryGetInput{Date: date}); err == nil {
		data.Scores = scores
	}

	h.renderer.renderPage(w, r, "journal", data)
}

// HandleJournalSave handles POST /journal/{date}: create or replace.
func (h *Handlers) HandleJournalSave(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	intensity := 0
	if s := strings.TrimSpace(r.FormValue("mood_intensity")); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewValidation("mood_intensity", "mood_intensity must be an integer"))
			return
		}
		intensity = v
	}

	entry, err := ops.JournalPut(r.Context(), h.env, ops.JournalPutInput{
		Date:          date,
		Note:          r.FormValue("note"),
		MoodIntensity: intensity,
		MoodTag:       strings.TrimSpace(r.FormValue("mood_tag")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, entry)
		return
	}
	http.Redirect(w, r, "/journal/"+date, http.StatusSeeOther)
}

// HandleJournalDelete handles POST /journal/{date}/delete.
func (h *Handlers) HandleJournalDelete(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	result, err := ops.JournalDelete(r.Context(), h.env, date)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/calendar?month="+date[:7], http.StatusSeeOther)
}

// formInt parses a required integer form field.
func formInt(r *http.Request, name string) (int, error) {
	s := strings.TrimSpace(r.FormValue(name))
	if s == "" {
		return 0, errors.NewInvalidRequest(name + " is required")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return v, nil
}

// queryInt parses an optional integer query parameter; absent is 0.
func queryInt(r *http.Request, name string) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewValidation(name, name+" must be an integer")
	}
	return v, nil
}

// parseBool parses a form checkbox or flag.
func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "on"
}
