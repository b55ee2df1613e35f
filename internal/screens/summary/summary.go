package summary

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/screen"
	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/trainer"
	"github.com/abhisek/chessdrill/internal/ui/components"
	"github.com/abhisek/chessdrill/internal/ui/layout"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

// SummaryScreen displays the end-of-session summary.
type SummaryScreen struct {
	summary *trainer.Summary
	now     func() time.Time
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *trainer.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary, now: time.Now}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	center := func(style lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text))
	}

	var b strings.Builder

	b.WriteString(center(theme.Title, "Session complete!"))
	b.WriteString("\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("%s  ·  %s", sum.Mode.Label(), FormatDuration(sum.Duration))))
	b.WriteString("\n\n")

	st := sum.Stats
	b.WriteString(center(theme.Body, fmt.Sprintf(
		"Lines: %d studied, %d completed, %d perfect", st.LinesStudied, st.LinesCompleted, st.PerfectLines)))
	b.WriteString("\n")
	b.WriteString(center(theme.Body, fmt.Sprintf(
		"Moves: %d correct    Mistakes: %d    Hints: %d", st.CorrectMoves, st.Mistakes, st.Hints)))
	b.WriteString("\n\n")

	if st.CorrectMoves+st.Mistakes > 0 {
		bar := components.NewProgressBar("Accuracy", sum.Accuracy, true, min(width-8, 50))
		bar.Graded = true
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n\n")
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 50)))
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Review cards"))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	for _, d := range []spacedrep.Difficulty{spacedrep.DifficultyNew, spacedrep.DifficultyLearning, spacedrep.DifficultyTesting} {
		line := fmt.Sprintf("%-10s %3d", DifficultyLabel(d), sum.Cards[d])
		b.WriteString(center(lipgloss.NewStyle().Foreground(difficultyColor(d)), line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var due string
	switch {
	case sum.DueNow > 0:
		due = fmt.Sprintf("%d due now", sum.DueNow)
	case !sum.NextDue.IsZero():
		due = "Next review " + Until(sum.NextDue, s.now())
	default:
		due = "Nothing scheduled"
	}
	b.WriteString(center(theme.Warn, due))

	return b.String()
}

// DifficultyLabel names a card phase for display.
func DifficultyLabel(d spacedrep.Difficulty) string {
	switch d {
	case spacedrep.DifficultyNew:
		return "New"
	case spacedrep.DifficultyLearning:
		return "Learning"
	case spacedrep.DifficultyTesting:
		return "Testing"
	}
	return string(d)
}

func difficultyColor(d spacedrep.Difficulty) color.Color {
	switch d {
	case spacedrep.DifficultyLearning:
		return theme.Secondary
	case spacedrep.DifficultyTesting:
		return theme.Success
	default:
		return theme.Text
	}
}

// FormatDuration renders d as m:ss, or h:mm:ss past an hour.
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Until describes when t comes relative to now, e.g. "in 3h" or "in 2 days".
func Until(t, now time.Time) string {
	d := t.Sub(now)
	switch {
	case d <= 0:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes())+1)
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	case d < 48*time.Hour:
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", int(d.Hours()/24))
}
