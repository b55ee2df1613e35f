package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/screen"
	"github.com/abhisek/chessdrill/internal/screens/drill"
	"github.com/abhisek/chessdrill/internal/screens/history"
	"github.com/abhisek/chessdrill/internal/screens/lines"
	"github.com/abhisek/chessdrill/internal/selfupdate"
	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/trainer"
	"github.com/abhisek/chessdrill/internal/ui/components"
)

// Menu labels.
const (
	labelTheory    = "THEORY"
	labelExercises = "EXERCISES"
	labelReview    = "REVIEW"
	labelLines     = "LINES"
	labelHistory   = "HISTORY"
	labelQuit      = "QUIT"
)

// Options configures the home screen.
type Options struct {
	// Drill is the template for every drill started from home.
	Drill drill.Options
	// Version is the running build; an empty Version or nil Updates skips
	// the release check.
	Version string
	Updates *selfupdate.Checker
	// AutoStart opens a drill in Drill.Mode as soon as the app starts.
	AutoStart bool
}

// overviewMsg carries the review state shown on the dashboard.
type overviewMsg struct {
	Due    int
	Counts map[spacedrep.Difficulty]int
	Next   *spacedrep.Card
	Err    error
}

type updateMsg struct {
	Latest string
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	opts     Options
	menu     components.Menu
	due      int
	counts   map[spacedrep.Difficulty]int
	next     *spacedrep.Card
	errMsg   string
	latest   string
	theory   int
	exercise int
	now      func() time.Time
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts, now: time.Now}
	c := opts.Drill.Course
	if c != nil {
		h.theory = len(c.LinesOfType(course.TypeTheory))
		h.exercise = len(c.LinesOfType(course.TypeExercise))
	}

	items := []components.MenuItem{
		{Label: labelTheory, Key: "t", Action: h.startDrill(trainer.ModeTheory), Disabled: h.theory == 0},
		{Label: labelExercises, Key: "e", Action: h.startDrill(trainer.ModeExercises), Disabled: h.exercise == 0},
		{Label: labelReview, Key: "r", Action: h.startDrill(trainer.ModeReview), Disabled: h.theory == 0},
		{Label: labelLines, Key: "l", Action: func() tea.Cmd {
			return push(lines.New(h.opts.Drill))
		}, Disabled: c == nil},
		{Label: labelHistory, Key: "h", Action: func() tea.Cmd {
			return push(history.New(h.opts.Drill.Events))
		}, Disabled: opts.Drill.Events == nil},
		{Label: labelQuit, Key: "q", Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
	return h
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) startDrill(mode trainer.Mode) func() tea.Cmd {
	return func() tea.Cmd {
		opts := h.opts.Drill
		opts.Mode = mode
		return push(drill.New(opts))
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{h.loadOverview(), h.checkUpdate()}
	if h.opts.AutoStart && h.opts.Drill.Course != nil {
		cmds = append(cmds, push(drill.New(h.opts.Drill)))
	}
	return tea.Batch(cmds...)
}

// Resume refreshes the dashboard when a drill or the lines screen returns.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadOverview()
}

func (h *HomeScreen) loadOverview() tea.Cmd {
	if h.opts.Drill.Course == nil {
		return nil
	}
	opts := h.opts.Drill
	now := h.now()
	return func() tea.Msg {
		sched, err := drill.LoadCards(context.Background(), opts, now)
		if err != nil {
			return overviewMsg{Err: err}
		}
		scope := drill.TheoryScope(opts.Course)
		return overviewMsg{
			Due:    sched.DueCount(now, scope),
			Counts: sched.Counts(),
			Next:   earliest(sched.All(), scope),
		}
	}
}

// earliest returns the in-scope card with the soonest review date.
func earliest(cards []spacedrep.Card, scope func(string) bool) *spacedrep.Card {
	var next *spacedrep.Card
	for i := range cards {
		c := &cards[i]
		if !scope(c.ID) {
			continue
		}
		if next == nil || c.NextReviewAt.Before(next.NextReviewAt) {
			next = c
		}
	}
	return next
}

func (h *HomeScreen) checkUpdate() tea.Cmd {
	if h.opts.Updates == nil || h.opts.Version == "" {
		return nil
	}
	checker, version := h.opts.Updates, h.opts.Version
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
		if err != nil || !res.UpdateAvailable {
			return nil
		}
		return updateMsg{Latest: res.LatestVersion}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.due, h.counts, h.next = msg.Due, msg.Counts, msg.Next
		badge := ""
		if h.due > 0 {
			badge = fmt.Sprintf("%d due", h.due)
		}
		h.menu.SetBadge(labelReview, badge)
		return h, nil
	case updateMsg:
		h.latest = msg.Latest
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back the header and footer to guess
	// the terminal height.
	compact := height+8 < 30 || width < 100
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(h.courseName(), cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(h.mascot(), cw))
	}
	sections = append(sections, renderStatsBar(h.stats(), cw, compact))
	if h.errMsg != "" {
		sections = append(sections, renderNote("Could not load progress: "+h.errMsg, cw))
	}
	sections = append(sections, renderMenu(h.menu, cw, compact))
	if h.latest != "" {
		sections = append(sections, renderNote(
			fmt.Sprintf("New version %s available, run chessdrill update", h.latest), cw))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) courseName() string {
	if c := h.opts.Drill.Course; c != nil && c.Name != "" {
		return c.Name
	}
	return "No course loaded"
}

func (h *HomeScreen) stats() dashboard {
	d := dashboard{
		Theory:    h.theory,
		Exercises: h.exercise,
		Due:       h.due,
		Testing:   h.counts[spacedrep.DifficultyTesting],
	}
	if h.due == 0 && h.next != nil {
		d.Next = nextLabel(h.next.NextReviewAt, h.now())
	}
	return d
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case h.due >= 3:
		return MascotAlert
	case h.theory > 0 && h.counts[spacedrep.DifficultyTesting] == h.theory:
		return MascotCelebrating
	}
	return MascotIdle
}

// nextLabel describes when the next review falls due.
func nextLabel(t, now time.Time) string {
	d := t.Sub(now)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", max(int(d.Minutes()), 1))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}
