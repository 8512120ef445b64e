package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/report"
	"github.com/gitfudge0/werkday/internal/sync"
)

type Formatter struct {
	// Styles for different components
	titleStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	sourceStyle   lipgloss.Style
	recordStyle   lipgloss.Style
	timeStyle     lipgloss.Style
	detailStyle   lipgloss.Style
	urlStyle      lipgloss.Style
	countStyle    lipgloss.Style
	borderStyle   lipgloss.Style
	unsyncedStyle lipgloss.Style
}

// isDarkMode detects if the terminal is using a dark theme
func isDarkMode() bool {
	if theme := os.Getenv("THEME"); theme == "dark" {
		return true
	}
	if theme := os.Getenv("TERMINAL_THEME"); theme == "dark" {
		return true
	}

	if colorScheme := os.Getenv("COLORFGBG"); colorScheme != "" {
		// COLORFGBG format is usually "foreground;background"
		parts := strings.Split(colorScheme, ";")
		if len(parts) >= 2 {
			bg := parts[len(parts)-1]
			return bg == "0" || bg == "1" || bg == "8"
		}
	}

	return false
}

func NewFormatter() *Formatter {
	flavor := catppuccin.Latte
	if isDarkMode() {
		flavor = catppuccin.Mocha
	}

	return &Formatter{
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(flavor.Mauve().Hex)).
			MarginBottom(1),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(flavor.Blue().Hex)).
			MarginTop(1).
			MarginBottom(1),
		sourceStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(flavor.Green().Hex)).
			PaddingLeft(1).
			PaddingRight(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(flavor.Green().Hex)),
		recordStyle: lipgloss.NewStyle().
			PaddingLeft(2).
			PaddingTop(1).
			MarginBottom(1),
		timeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(flavor.Subtext1().Hex)).
			Bold(true),
		detailStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(flavor.Subtext0().Hex)).
			PaddingLeft(5).
			Italic(true),
		urlStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(flavor.Sapphire().Hex)).
			PaddingLeft(5).
			Underline(true),
		countStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(flavor.Peach().Hex)).
			Bold(true),
		borderStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(flavor.Surface2().Hex)),
		unsyncedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(flavor.Yellow().Hex)).
			Italic(true),
	}
}

func (f *Formatter) FormatSummary(summary *report.Summary) string {
	var output strings.Builder

	title := fmt.Sprintf("📊 Work Summary %s", f.rangeLabel(summary))
	output.WriteString(f.titleStyle.Render(title))
	output.WriteString("\n")

	output.WriteString(f.headerStyle.Render(f.countsLine(summary.Counts)))
	output.WriteString("\n\n")

	output.WriteString(f.formatSourceSection("🐙 GitHub", summary.GitHub))
	output.WriteString(f.formatSourceSection("🎫 Jira", summary.Jira))

	if len(summary.Notes) > 0 {
		output.WriteString(f.sourceStyle.Render(fmt.Sprintf("📝 Notes (%d)", len(summary.Notes))))
		output.WriteString("\n")
		output.WriteString(f.borderStyle.Render(strings.Repeat("─", 60)))
		output.WriteString("\n")
		for _, note := range summary.Notes {
			var content strings.Builder
			timeStr := f.timeStyle.Render(note.UpdatedAt.Format("Jan 2 15:04"))
			content.WriteString(fmt.Sprintf("%s  %s\n", timeStr, note.Title))
			if note.Body != "" {
				content.WriteString(f.detailStyle.Render(note.Body))
				content.WriteString("\n")
			}
			output.WriteString(f.recordStyle.Render(content.String()))
		}
		output.WriteString("\n")
	}

	if summary.Narrative != nil {
		output.WriteString(f.formatNarrative(summary.Narrative))
	}

	return output.String()
}

func (f *Formatter) rangeLabel(summary *report.Summary) string {
	if summary.From == summary.To {
		return summary.From
	}
	return fmt.Sprintf("%s → %s", summary.From, summary.To)
}

func (f *Formatter) countsLine(counts activity.Counts) string {
	if counts.Total == 0 {
		return "No recorded activity in this range."
	}
	parts := []string{}
	add := func(n int, singular, plural string) {
		if n == 0 {
			return
		}
		label := plural
		if n == 1 {
			label = singular
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	add(counts.Commits, "commit", "commits")
	add(counts.PullRequests, "pull request", "pull requests")
	add(counts.Reviews, "review", "reviews")
	add(counts.IssuesTouched, "issue touched", "issues touched")
	add(counts.Transitions, "transition", "transitions")
	add(counts.Comments, "comment", "comments")
	add(counts.Worklogs, "worklog", "worklogs")
	line := strings.Join(parts, ", ")
	if counts.LoggedHours > 0 {
		line += fmt.Sprintf(" (%.1fh logged)", counts.LoggedHours)
	}
	return line
}

func (f *Formatter) formatSourceSection(header string, result *sync.RangeResult) string {
	if result == nil {
		return ""
	}
	var section strings.Builder

	section.WriteString(f.sourceStyle.Render(fmt.Sprintf("%s (%d)", header, len(result.Records))))
	section.WriteString("\n")
	section.WriteString(f.borderStyle.Render(strings.Repeat("─", 60)))
	section.WriteString("\n")

	if !result.Synced {
		section.WriteString(f.unsyncedStyle.Render("  not synced for this range"))
		section.WriteString("\n\n")
		return section.String()
	}
	if len(result.Records) == 0 {
		section.WriteString(f.detailStyle.Render("no activity"))
		section.WriteString("\n\n")
		return section.String()
	}

	for _, rec := range result.Records {
		section.WriteString(f.formatRecord(rec))
	}

	section.WriteString("\n")
	return section.String()
}

func (f *Formatter) formatRecord(rec activity.Record) string {
	var content strings.Builder

	timeStr := f.timeStyle.Render(rec.Timestamp.Format("Jan 2 15:04"))
	content.WriteString(fmt.Sprintf("%s %s  %s\n", timeStr, f.kindIcon(rec.Kind), recordTitle(rec)))

	if detail := recordDetail(rec); detail != "" {
		content.WriteString(f.detailStyle.Render(detail))
		content.WriteString("\n")
	}
	if rec.URL != "" {
		content.WriteString(f.urlStyle.Render("🔗 " + rec.URL))
		content.WriteString("\n")
	}

	return f.recordStyle.Render(content.String())
}

func (f *Formatter) formatNarrative(n *report.Narrative) string {
	var md strings.Builder
	md.WriteString("## Narrative\n\n")
	md.WriteString(n.Summary)
	md.WriteString("\n")
	if len(n.Highlights) > 0 {
		md.WriteString("\n### Highlights\n\n")
		for _, h := range n.Highlights {
			md.WriteString("- " + h + "\n")
		}
	}
	if len(n.NextSteps) > 0 {
		md.WriteString("\n### Next steps\n\n")
		for _, s := range n.NextSteps {
			md.WriteString("- " + s + "\n")
		}
	}

	style := "light"
	if isDarkMode() {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithEmoji())
	if err != nil {
		return md.String()
	}
	rendered, err := renderer.Render(md.String())
	if err != nil {
		return md.String()
	}
	return rendered
}

func (f *Formatter) kindIcon(kind activity.Kind) string {
	icons := map[activity.Kind]string{
		activity.KindCommit:      "💾",
		activity.KindPullRequest: "🔀",
		activity.KindReview:      "👁️",
		activity.KindIssue:       "🎯",
		activity.KindTransition:  "🔄",
		activity.KindComment:     "💬",
		activity.KindWorklog:     "⏱️",
	}

	if icon, exists := icons[kind]; exists {
		return icon
	}
	return "📋"
}

func recordTitle(rec activity.Record) string {
	switch {
	case rec.Code != nil:
		return rec.Code.Title
	case rec.Issue != nil:
		if rec.Issue.Summary != "" {
			return fmt.Sprintf("%s %s", rec.Issue.Key, rec.Issue.Summary)
		}
		return rec.Issue.Key
	}
	return rec.ID
}

func recordDetail(rec activity.Record) string {
	switch {
	case rec.Code != nil && rec.Code.Repository != "":
		if rec.Code.Status != "" {
			return fmt.Sprintf("%s · %s", rec.Code.Repository, rec.Code.Status)
		}
		return rec.Code.Repository
	case rec.Issue != nil && rec.Issue.Transition != nil:
		return fmt.Sprintf("%s → %s", rec.Issue.Transition.From, rec.Issue.Transition.To)
	case rec.Issue != nil && rec.Issue.Comment != nil:
		return rec.Issue.Comment.Body
	case rec.Issue != nil && rec.Issue.Worklog != nil:
		if rec.Issue.Worklog.Duration != "" {
			return "logged " + rec.Issue.Worklog.Duration
		}
		return fmt.Sprintf("logged %ds", rec.Issue.Worklog.Seconds)
	}
	return ""
}

func (f *Formatter) FormatCompactSummary(summary *report.Summary) string {
	var output strings.Builder

	header := fmt.Sprintf("Summary %s - %d activities", f.rangeLabel(summary), summary.Counts.Total)
	output.WriteString(f.titleStyle.Render(header))
	output.WriteString("\n\n")

	for _, result := range []*sync.RangeResult{summary.GitHub, summary.Jira} {
		if result == nil || !result.Synced {
			continue
		}
		for _, rec := range result.Records {
			timeStr := f.timeStyle.Render(rec.Timestamp.Format("Jan 2 15:04"))
			output.WriteString(fmt.Sprintf("%s %s %s %s\n", timeStr, f.kindIcon(rec.Kind), rec.Source, recordTitle(rec)))
		}
	}
	for _, note := range summary.Notes {
		timeStr := f.timeStyle.Render(note.UpdatedAt.Format("Jan 2 15:04"))
		output.WriteString(fmt.Sprintf("%s 📝 note %s\n", timeStr, note.Title))
	}

	return output.String()
}

func (f *Formatter) FormatJSON(summary *report.Summary) string {
	jsonBytes, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "Failed to marshal JSON: %s"}`, err.Error())
	}
	return string(jsonBytes) + "\n"
}
