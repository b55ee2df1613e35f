package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestIsTooSmall(t *testing.T) {
	assert.False(t, IsTooSmall(80, 24))
	assert.True(t, IsTooSmall(79, 40))
	assert.True(t, IsTooSmall(120, 23))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Najdorf", truncate("Najdorf", 10))
	assert.Equal(t, "Najd…", truncate("Najdorf", 5))
	assert.Equal(t, "", truncate("Najdorf", 1))
}

func TestRenderHeader_Fits(t *testing.T) {
	for _, w := range []int{80, 100, 160} {
		out := RenderHeader("Sicilian Defense: Najdorf Variation, English Attack", "Review 3/12 · 2 mistakes", w)
		assert.Equal(t, w, lipgloss.Width(out), "width %d", w)
		assert.Equal(t, 3, lipgloss.Height(out))
		assert.Contains(t, out, "chessdrill")
	}
}

func TestRenderFooter_KeepsLastHint(t *testing.T) {
	hints := []KeyHint{
		{"←→", "Step through line"},
		{"h", "Hint"},
		{"f", "Flip board"},
		{"a", "Show arrows"},
		{"Esc", "Back"},
		{"Ctrl+C", "Quit"},
	}
	wide := RenderFooter(hints, 160)
	assert.Contains(t, wide, "Flip board")
	assert.Contains(t, wide, "Quit")

	narrow := RenderFooter(hints, 40)
	assert.Equal(t, 40, lipgloss.Width(narrow))
	assert.Contains(t, narrow, "Quit")
	assert.NotContains(t, narrow, "Show arrows")
}

func TestRenderFrame(t *testing.T) {
	header := RenderHeader("Theory", "", 80)
	footer := RenderFooter([]KeyHint{{"Ctrl+C", "Quit"}}, 80)
	content := strings.Repeat("row\n", 50)

	out := RenderFrame(header, content, footer, 80, 24)
	assert.Equal(t, 24, lipgloss.Height(out), "overlong content is clipped")
	assert.Contains(t, out, "Quit")
}
