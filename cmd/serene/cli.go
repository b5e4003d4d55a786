package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/serene/internal/config"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/journal"
	"github.com/hpungsan/serene/internal/kv"
	"github.com/hpungsan/serene/internal/ops"
	"github.com/hpungsan/serene/internal/web"
)

// maxStdinBytes bounds piped input (answer maps and journal notes).
const maxStdinBytes = 64 * 1024

// app carries what every command needs. The env is built per invocation
// so each command resumes the persisted assessment.
type app struct {
	store  kv.Store
	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) env(c *cli.Context) *ops.Env {
	return ops.NewEnv(c.Context, a.store, a.cfg, ops.EnvOptions{Logger: a.logger})
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store kv.Store, cfg *config.Config, logger *zap.Logger) *cli.App {
	a := &app{store: store, cfg: cfg, logger: logger}
	cliApp := &cli.App{
		Name:    "serene",
		Usage:   "DASS-21 check-ins, history and mood journal",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json|yaml"},
			&cli.BoolFlag{Name: "verbose", Usage: "Debug logging to stderr"},
		},
		Commands: []*cli.Command{
			a.itemsCmd(),
			a.scoreCmd(),
			a.statusCmd(),
			a.answerCmd(),
			a.submitCmd(),
			a.retakeCmd(),
			a.historyCmd(),
			a.resultsCmd(),
			a.monthCmd(),
			a.weekCmd(),
			a.journalCmd(),
			a.serveCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// itemsCmd lists the instrument.
func (a *app) itemsCmd() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "List the 21 items, answer options and severity bands",
		Action: func(c *cli.Context) error {
			return output(c, ops.Items())
		},
	}
}

// scoreCmd scores an answer map without touching the session.
func (a *app) scoreCmd() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "Score answers without recording them (--answers or JSON on stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "answers", Aliases: []string{"a"}, Usage: `Answers as "id=value,..." (e.g. 1=2,2=0)`},
		},
		Action: func(c *cli.Context) error {
			answers, err := answersFrom(c)
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Score(ops.ScoreInput{Answers: answers})
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// statusCmd shows the in-progress assessment.
func (a *app) statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the in-progress assessment",
		Action: func(c *cli.Context) error {
			return output(c, ops.Status(a.env(c)))
		},
	}
}

// answerCmd records one answer.
func (a *app) answerCmd() *cli.Command {
	return &cli.Command{
		Name:      "answer",
		Usage:     "Answer one item",
		ArgsUsage: "<item_id> <value>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "advance", Usage: "Move to the next item after answering the current one"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewInvalidRequest("answer takes <item_id> <value>"))
			}
			itemID, err := strconv.Atoi(c.Args().Get(0))
			if err != nil {
				return outputError(errors.NewInvalidRequest("item_id must be an integer"))
			}
			value, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return outputError(errors.NewInvalidRequest("value must be an integer"))
			}

			out, err := ops.Answer(c.Context, a.env(c), ops.AnswerInput{
				ItemID:  itemID,
				Value:   value,
				Advance: c.Bool("advance"),
			})
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// submitCmd scores the assessment and records it in the history.
func (a *app) submitCmd() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Submit the assessment and record it for a date",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Date key YYYY-MM-DD (defaults to today)"},
			&cli.StringFlag{Name: "answers", Aliases: []string{"a"}, Usage: `Answer every item first, as "id=value,..."`},
		},
		Action: func(c *cli.Context) error {
			env := a.env(c)
			if c.IsSet("answers") {
				answers, err := parseAnswers(c.String("answers"))
				if err != nil {
					return outputError(err)
				}
				if _, err := ops.AnswerAll(c.Context, env, answers); err != nil {
					return outputError(err)
				}
			}

			out, err := ops.Submit(c.Context, env, ops.SubmitInput{Date: c.String("date")})
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// retakeCmd discards the in-progress assessment.
func (a *app) retakeCmd() *cli.Command {
	return &cli.Command{
		Name:  "retake",
		Usage: "Discard the in-progress assessment and start over",
		Action: func(c *cli.Context) error {
			return output(c, ops.Retake(c.Context, a.env(c)))
		},
	}
}

// historyCmd lists recorded results, or shows one date.
func (a *app) historyCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List recorded results (oldest first), or show one date",
		ArgsUsage: "[date]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "Inclusive lower bound YYYY-MM-DD"},
			&cli.StringFlag{Name: "to", Usage: "Inclusive upper bound YYYY-MM-DD"},
		},
		Action: func(c *cli.Context) error {
			env := a.env(c)
			if c.NArg() > 0 {
				out, err := ops.HistoryGet(c.Context, env, ops.HistoryGetInput{Date: c.Args().First()})
				if err != nil {
					return outputError(err)
				}
				return output(c, out)
			}

			out, err := ops.HistoryList(c.Context, env, ops.HistoryListInput{
				From: c.String("from"),
				To:   c.String("to"),
			})
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// resultsCmd shows the latest result with its severity breakdown.
func (a *app) resultsCmd() *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "Show the latest result with severity bands and trend",
		Action: func(c *cli.Context) error {
			out, err := ops.Results(c.Context, a.env(c))
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// monthCmd renders a calendar month.
func (a *app) monthCmd() *cli.Command {
	return &cli.Command{
		Name:  "month",
		Usage: "Render a calendar month (defaults to the current one)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Usage: "Year"},
			&cli.IntFlag{Name: "month", Aliases: []string{"m"}, Usage: "Month 1-12"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Month(c.Context, a.env(c), ops.MonthInput{
				Year:  c.Int("year"),
				Month: c.Int("month"),
			})
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// weekCmd renders the week strip around a date.
func (a *app) weekCmd() *cli.Command {
	return &cli.Command{
		Name:      "week",
		Usage:     "Render the Sunday-first week containing a date (defaults to today)",
		ArgsUsage: "[date]",
		Action: func(c *cli.Context) error {
			out, err := ops.Week(c.Context, a.env(c), ops.WeekInput{Date: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// journalCmd groups the journal subcommands.
func (a *app) journalCmd() *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "Read and write the daily mood journal",
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Create or replace a day's entry (note via --note or stdin)",
				ArgsUsage: "[date]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Markdown note"},
					&cli.IntFlag{Name: "intensity", Aliases: []string{"i"}, Usage: fmt.Sprintf("Mood intensity 0-%d", journal.MaxMoodIntensity)},
					&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Mood tag: " + strings.Join(journal.MoodTags, "|")},
				},
				Action: func(c *cli.Context) error {
					note := c.String("note")
					if !c.IsSet("note") && stdinHasData() {
						text, err := readStdin(maxStdinBytes)
						if err != nil {
							return outputError(err)
						}
						note = text
					}

					out, err := ops.JournalPut(c.Context, a.env(c), ops.JournalPutInput{
						Date:          c.Args().First(),
						Note:          note,
						MoodIntensity: c.Int("intensity"),
						MoodTag:       c.String("tag"),
					})
					if err != nil {
						return outputError(err)
					}
					return output(c, out)
				},
			},
			{
				Name:      "get",
				Usage:     "Show a day's entry",
				ArgsUsage: "<date>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.NewInvalidRequest("journal get takes <date>"))
					}
					out, err := ops.JournalGet(c.Context, a.env(c), c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return output(c, out)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a day's entry",
				ArgsUsage: "<date>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.NewInvalidRequest("journal delete takes <date>"))
					}
					out, err := ops.JournalDelete(c.Context, a.env(c), c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return output(c, out)
				},
			},
		},
	}
}

// serveCmd runs the web UI.
func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8321, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(c.Context, a.store, a.cfg, web.Options{
				Version: Version,
				Bind:    c.String("bind"),
				Port:    c.Int("port"),
				Logger:  a.logger.Named("web"),
			})
			if err := web.Run(srv, a.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// output writes v to stdout in the format selected by --format.
func output(c *cli.Context, v any) error {
	switch format := c.String("format"); format {
	case "", "json":
		return outputJSON(v)
	case "yaml":
		return outputYAML(v)
	default:
		return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (json|yaml)", format)))
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v to stdout as YAML with the same keys as the JSON form.
func outputYAML(v any) error {
	out, err := toYAML(v)
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	_, err = os.Stdout.Write(out)
	return err
}

// toYAML round-trips v through its JSON encoding so the json tags name the
// keys, then re-emits it in block style with field order kept.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.SereneError
	if stderrors.As(err, &sErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, up to limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", limit))
	}
	return strings.TrimSpace(string(data)), nil
}

// answersFrom reads the answer map from --answers, or a JSON object on stdin.
func answersFrom(c *cli.Context) (map[int]int, error) {
	if c.IsSet("answers") {
		return parseAnswers(c.String("answers"))
	}
	if !stdinHasData() {
		return nil, errors.NewInvalidRequest(`answers are required: --answers "1=2,2=0,..." or a JSON object on stdin`)
	}
	text, err := readStdin(maxStdinBytes)
	if err != nil {
		return nil, err
	}
	var answers map[int]int
	if err := json.Unmarshal([]byte(text), &answers); err != nil {
		return nil, errors.NewInvalidRequest(`stdin must be a JSON object like {"1": 2, "2": 0}`)
	}
	return answers, nil
}

// parseAnswers parses "id=value,id=value" pairs.
func parseAnswers(s string) (map[int]int, error) {
	answers := map[int]int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idStr, valStr, ok := strings.Cut(part, "=")
		if !ok {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid answer %q: want id=value", part))
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid item id in %q", part))
		}
		v, err := strconv.Atoi(strings.TrimSpace(valStr))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid value in %q", part))
		}
		if _, dup := answers[id]; dup {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("item %d answered twice", id))
		}
		answers[id] = v
	}
	return answers, nil
}
