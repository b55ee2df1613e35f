package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/screens/drill"
	"github.com/abhisek/chessdrill/internal/screens/home"
)

func testOptions() Options {
	return Options{Home: home.Options{Drill: drill.Options{Course: &course.Course{
		ID:          "test",
		Name:        "Test Course",
		PlayerColor: rules.White,
		Lines: []course.Line{
			{ID: "italian", Name: "Italian Game", Category: "Open", Moves: []string{"e4", "e5", "Nf3"}, Type: course.TypeTheory},
		},
	}}}}
}

func sized(t *testing.T) AppModel {
	t.Helper()
	m := newAppModel(testOptions())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(AppModel)
}

func TestAppModel_View(t *testing.T) {
	m := sized(t)
	view := m.View()
	if !view.AltScreen {
		t.Error("expected alt screen")
	}
	if !strings.Contains(m.router.View(120, 30), "Test Course") {
		t.Error("expected course name on the home screen")
	}
}

func TestAppModel_EscPopsOnlyAboveRoot(t *testing.T) {
	m := sized(t)
	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("Esc on the root screen should do nothing")
	}

	m.router.Push(drill.New(drill.Options{}))
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command for a screen that does not claim Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestAppModel_CtrlCUnwinds(t *testing.T) {
	m := sized(t)
	m.router.Push(drill.New(drill.Options{}))

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.router.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", m.router.Depth())
	}
}
