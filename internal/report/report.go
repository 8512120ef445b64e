package report

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/cache"
	"github.com/gitfudge0/werkday/internal/common"
	"github.com/gitfudge0/werkday/internal/config"
	"github.com/gitfudge0/werkday/internal/llm"
	"github.com/gitfudge0/werkday/internal/notes"
	"github.com/gitfudge0/werkday/internal/store"
	"github.com/gitfudge0/werkday/internal/sync"
)

// Previews in the narrative prompt are capped so a busy range cannot blow
// the token budget.
const maxPreviewItems = 5

const maxNarrativeTokens = 800

// Narrative is the structured report produced by the language model. Absent
// (nil) means generation was unavailable or unparseable, not that it failed.
type Narrative struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	NextSteps  []string `json:"nextSteps"`
}

// Summary aggregates a date range across both sources plus notes.
type Summary struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	GitHub      *sync.RangeResult `json:"github"`
	Jira        *sync.RangeResult `json:"jira"`
	Notes       []notes.Note      `json:"notes"`
	Counts      activity.Counts   `json:"counts"`
	Narrative   *Narrative        `json:"narrative,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Builder reads the day buckets, rolling caches and notes to produce
// summaries, optionally asking the language model for a narrative.
type Builder struct {
	orch   *sync.Orchestrator
	notes  *notes.Store
	blobs  *store.Store
	cfg    *config.Store
	newLLM func(config.LLMConfig) llm.Client
	now    func() time.Time
}

func NewBuilder(orch *sync.Orchestrator, noteStore *notes.Store, blobs *store.Store, cfg *config.Store) *Builder {
	return &Builder{
		orch:  orch,
		notes: noteStore,
		blobs: blobs,
		cfg:   cfg,
		newLLM: func(c config.LLMConfig) llm.Client {
			if client := llm.NewOpenAI(c); client != nil {
				return client
			}
			return nil
		},
		now: time.Now,
	}
}

// BuildSummary aggregates [from, to] from local stores only. When narrate is
// set and a model key is configured and the range has any activity, one
// completion call is made; its failure or unparseable output leaves
// Narrative nil without failing the summary.
func (b *Builder) BuildSummary(ctx context.Context, from, to time.Time, narrate bool) (*Summary, error) {
	gh, err := b.orch.ActivityForRange(activity.SourceGitHub, from, to)
	if err != nil {
		return nil, err
	}
	jr, err := b.orch.ActivityForRange(activity.SourceJira, from, to)
	if err != nil {
		return nil, err
	}

	rangeStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	rangeEnd := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).Add(24 * time.Hour)
	noteList, err := b.notes.InRange(rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	var union []activity.Record
	if gh.Synced {
		union = append(union, gh.Records...)
	}
	if jr.Synced {
		union = append(union, jr.Records...)
	}
	union = activity.Dedupe(union)

	summary := &Summary{
		From:        gh.From,
		To:          gh.To,
		GitHub:      gh,
		Jira:        jr,
		Notes:       noteList,
		Counts:      activity.Count(union),
		GeneratedAt: b.now(),
	}
	if summary.Notes == nil {
		summary.Notes = []notes.Note{}
	}

	if narrate && summary.Counts.Total+len(noteList) > 0 {
		summary.Narrative = b.generateNarrative(ctx, summary, union)
	}

	// Multi-day summaries are not cached: the store is keyed by single date.
	if summary.From == summary.To {
		if err := b.blobs.Write(summaryKey(summary.From), summary); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// DailySummary returns the persisted summary for one date, or nil.
func (b *Builder) DailySummary(date time.Time) (*Summary, error) {
	var summary Summary
	found, err := b.blobs.Read(summaryKey(date.Format(cache.DayFormat)), &summary)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &summary, nil
}

// History lists the dates with a persisted daily summary, newest first.
func (b *Builder) History() ([]string, error) {
	dates, err := b.blobs.Keys("summary")
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (b *Builder) generateNarrative(ctx context.Context, summary *Summary, records []activity.Record) *Narrative {
	logger := common.Logger()

	cfg, err := b.cfg.Load()
	if err != nil {
		logger.Warn("report: config load failed, skipping narrative", "error", err)
		return nil
	}
	client := b.newLLM(cfg.LLM)
	if client == nil {
		return nil
	}

	response, err := client.Complete(ctx, buildPrompt(summary, records), maxNarrativeTokens)
	if err != nil {
		logger.Warn("report: narrative generation failed", "error", err)
		return nil
	}

	var narrative Narrative
	if !extractJSON(response, &narrative) {
		logger.Warn("report: narrative response was not valid JSON")
		return nil
	}
	return &narrative
}

func buildPrompt(summary *Summary, records []activity.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are summarizing a software engineer's work from %s to %s.\n\n", summary.From, summary.To)
	fmt.Fprintf(&b, "Totals: %d commits, %d pull requests, %d reviews, %d issues touched, %d status transitions, %d comments, %d worklogs (%.1f hours logged).\n\n",
		summary.Counts.Commits, summary.Counts.PullRequests, summary.Counts.Reviews,
		summary.Counts.IssuesTouched, summary.Counts.Transitions, summary.Counts.Comments,
		summary.Counts.Worklogs, summary.Counts.LoggedHours)

	byKind := activity.GroupByKind(records)
	writePreview(&b, "Commits", byKind[activity.KindCommit])
	writePreview(&b, "Pull requests", byKind[activity.KindPullRequest])
	writePreview(&b, "Reviews", byKind[activity.KindReview])
	writePreview(&b, "Issues", byKind[activity.KindIssue])
	writePreview(&b, "Transitions", byKind[activity.KindTransition])
	writePreview(&b, "Comments", byKind[activity.KindComment])
	writePreview(&b, "Worklogs", byKind[activity.KindWorklog])

	if len(summary.Notes) > 0 {
		b.WriteString("Notes:\n")
		for i, note := range summary.Notes {
			if i == maxPreviewItems {
				break
			}
			fmt.Fprintf(&b, "- %s\n", note.Body)
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with only a JSON object, no markdown, shaped as " +
		`{"summary": "<2-3 sentence executive summary>", ` +
		`"highlights": ["<3-5 bullet points>"], ` +
		`"nextSteps": ["<2-3 bullet points>"]}.`)
	return b.String()
}

func writePreview(b *strings.Builder, label string, records []activity.Record) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for i, r := range records {
		if i == maxPreviewItems {
			fmt.Fprintf(b, "- ...and %d more\n", len(records)-maxPreviewItems)
			break
		}
		fmt.Fprintf(b, "- %s\n", previewLine(r))
	}
	b.WriteString("\n")
}

func previewLine(r activity.Record) string {
	switch {
	case r.Code != nil:
		return fmt.Sprintf("[%s] %s", r.Code.Repository, r.Code.Title)
	case r.Issue != nil && r.Issue.Transition != nil:
		return fmt.Sprintf("%s: %s -> %s", r.Issue.Key, r.Issue.Transition.From, r.Issue.Transition.To)
	case r.Issue != nil && r.Issue.Comment != nil:
		return fmt.Sprintf("%s: %s", r.Issue.Key, r.Issue.Comment.Body)
	case r.Issue != nil && r.Issue.Worklog != nil:
		return fmt.Sprintf("%s: logged %s", r.Issue.Key, r.Issue.Worklog.Duration)
	case r.Issue != nil:
		return fmt.Sprintf("%s: %s", r.Issue.Key, r.Issue.Summary)
	}
	return r.ID
}

func summaryKey(date string) string {
	return path.Join("summary", date)
}
