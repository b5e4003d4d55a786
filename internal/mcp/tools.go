package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/serene/internal/journal"
)

var itemsToolDef = mcp.NewTool("assessment_items",
	mcp.WithDescription("List the 21 DASS-21 statements, the four answer options (0-3) and the severity bands for each subscale."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var statusToolDef = mcp.NewTool("assessment_status",
	mcp.WithDescription("Show the in-progress assessment: status (empty, in_progress, complete), the current item, answers so far and a provisional score."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var answerToolDef = mcp.NewTool("assessment_answer",
	mcp.WithDescription("Record an answer for one item. Re-sending the stored value reconfirms the item without rewriting it."),
	mcp.WithNumber("item_id",
		mcp.Required(),
		mcp.Description("Item number, 1-21"),
		mcp.Min(1),
		mcp.Max(21),
	),
	mcp.WithNumber("value",
		mcp.Required(),
		mcp.Description("0 = did not apply, 1 = some of the time, 2 = a good part of the time, 3 = most of the time"),
		mcp.Min(0),
		mcp.Max(3),
	),
	mcp.WithBoolean("advance",
		mcp.Description("Move to the next item after answering the current one"),
	),
)

var advanceToolDef = mcp.NewTool("assessment_advance",
	mcp.WithDescription("Move to the next item. The current item must have been answered or reconfirmed in this session."),
)

var retreatToolDef = mcp.NewTool("assessment_retreat",
	mcp.WithDescription("Move to the previous item."),
)

var submitToolDef = mcp.NewTool("assessment_submit",
	mcp.WithDescription("Score the completed assessment and record it in history for a date. Fails with NOT_READY until all 21 items are answered."),
	mcp.WithString("date",
		mcp.Description("YYYY-MM-DD (default: today)"),
	),
)

var retakeToolDef = mcp.NewTool("assessment_retake",
	mcp.WithDescription("Discard all answers and start over. History is kept."),
	mcp.WithDestructiveHintAnnotation(true),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List recorded results in ascending date order with severity labels."),
	mcp.WithString("from",
		mcp.Description("Inclusive lower bound, YYYY-MM-DD"),
	),
	mcp.WithString("to",
		mcp.Description("Inclusive upper bound, YYYY-MM-DD"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var historyGetToolDef = mcp.NewTool("history_get",
	mcp.WithDescription("Get the recorded result for one date."),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("YYYY-MM-DD"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var monthToolDef = mcp.NewTool("calendar_month",
	mcp.WithDescription("Render a month of the mood calendar. Each day is colored by its D+A+S total, or by the journal mood tag when one is set."),
	mcp.WithNumber("year",
		mcp.Description("Four-digit year (default: current)"),
	),
	mcp.WithNumber("month",
		mcp.Description("1-12 (default: current)"),
		mcp.Min(1),
		mcp.Max(12),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var weekToolDef = mcp.NewTool("calendar_week",
	mcp.WithDescription("Render the Sunday-first week containing a date."),
	mcp.WithString("date",
		mcp.Description("YYYY-MM-DD (default: today)"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var journalPutToolDef = mcp.NewTool("journal_put",
	mcp.WithDescription("Create or replace the journal entry for a date."),
	mcp.WithString("date",
		mcp.Description("YYYY-MM-DD (default: today)"),
	),
	mcp.WithString("note",
		mcp.Description("Free text, Markdown allowed"),
	),
	mcp.WithNumber("mood_intensity",
		mcp.Description("0-10"),
		mcp.Min(0),
		mcp.Max(journal.MaxMoodIntensity),
	),
	mcp.WithString("mood_tag",
		mcp.Description("Optional mood tag; overrides the score color on the calendar"),
		mcp.Enum(journal.MoodTags...),
	),
)

var journalGetToolDef = mcp.NewTool("journal_get",
	mcp.WithDescription("Get the journal entry for a date."),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("YYYY-MM-DD"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)
