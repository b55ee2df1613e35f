package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/screen"
	"github.com/abhisek/chessdrill/internal/screens/summary"
	"github.com/abhisek/chessdrill/internal/store"
	"github.com/abhisek/chessdrill/internal/trainer"
	"github.com/abhisek/chessdrill/internal/ui/layout"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Reviews  map[string][]store.ReviewEventRecord // sessionID → reviews
	Err      error
}

// HistoryScreen displays past sessions and the lines reviewed in each.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionSummaryRecord
	reviews   map[string][]store.ReviewEventRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		ctx := context.Background()

		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: 50})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Group each course's review events by session.
		reviews := make(map[string][]store.ReviewEventRecord)
		seen := make(map[string]bool)
		for _, sess := range sessions {
			if seen[sess.CourseID] {
				continue
			}
			seen[sess.CourseID] = true
			events, err := repo.QueryReviewEvents(ctx, sess.CourseID, store.QueryOpts{})
			if err != nil {
				continue
			}
			for _, e := range events {
				reviews[e.SessionID] = append(reviews[e.SessionID], e)
			}
		}

		return historyLoadedMsg{Sessions: sessions, Reviews: reviews}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.reviews = msg.Reviews
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start drilling!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+sessionLine(sess))))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, line := range s.reviewLines(sess.SessionID) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// sessionLine is the one-line summary of a session.
func sessionLine(sess store.SessionSummaryRecord) string {
	dateStr := sess.Timestamp.Local().Format("Jan 02, 2006")
	durationStr := summary.FormatDuration(time.Duration(sess.DurationSecs) * time.Second)

	var accuracy float64
	if total := sess.CorrectMoves + sess.Mistakes; total > 0 {
		accuracy = float64(sess.CorrectMoves) / float64(total) * 100
	}

	hintStr := ""
	if sess.Hints > 0 {
		hintStr = fmt.Sprintf("  %d hint", sess.Hints)
		if sess.Hints > 1 {
			hintStr += "s"
		}
	}

	return fmt.Sprintf("%s  %s  %-9s  %d lines  %.0f%% accuracy%s",
		dateStr, durationStr, modeLabel(sess.Mode), sess.LinesStudied, accuracy, hintStr)
}

func (s *HistoryScreen) reviewLines(sessionID string) []string {
	events := s.reviews[sessionID]
	if len(events) == 0 {
		return []string{lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("    No lines finished this session")}
	}
	var out []string
	for _, e := range events {
		line := fmt.Sprintf("    %s %-24s %s", outcomeIcon(e.Outcome), e.LineID, e.Outcome)
		if e.Mistakes > 0 {
			line += fmt.Sprintf(", %d mistake(s)", e.Mistakes)
		}
		if e.IntervalDays > 0 {
			line += fmt.Sprintf(", next in %dd", e.IntervalDays)
		}
		out = append(out, lipgloss.NewStyle().Foreground(outcomeColor(e.Outcome)).Render(line))
	}
	return out
}

func modeLabel(mode string) string {
	switch mode {
	case string(trainer.ModeReview):
		return "review"
	case "":
		return "-"
	}
	return mode
}

func outcomeIcon(outcome string) string {
	switch outcome {
	case string(trainer.OutcomeDemoted):
		return "✗"
	case string(trainer.OutcomeStageAdvanced):
		return "↑"
	case string(trainer.OutcomeReviewed):
		return "✓"
	}
	return "·"
}

func outcomeColor(outcome string) color.Color {
	switch outcome {
	case string(trainer.OutcomeDemoted):
		return theme.Error
	case string(trainer.OutcomeStageAdvanced):
		return theme.Secondary
	case string(trainer.OutcomeReviewed):
		return theme.Success
	default:
		return theme.Text
	}
}
