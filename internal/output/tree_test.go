package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func plainColors(t *testing.T) {
	t.Helper()
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(previous) })
}

func childrenOf(tree map[string][]string) func(string) []string {
	return func(branch string) []string { return tree[branch] }
}

func TestStackTreeRenderer_RenderStack(t *testing.T) {
	plainColors(t)

	t.Run("linear stack", func(t *testing.T) {
		renderer := NewStackTreeRenderer("feat2", "main", childrenOf(map[string][]string{
			"main":  {"feat1"},
			"feat1": {"feat2"},
		}))
		renderer.SetAnnotation("feat1", BranchAnnotation{PRNumber: 1})
		renderer.SetAnnotation("feat2", BranchAnnotation{PRNumber: 2})

		require.Equal(t, []string{
			"◉ feat2 #2",
			"│",
			"◯ feat1 #1",
			"│",
			"◯ main",
			"│",
		}, renderer.RenderStack())
	})

	t.Run("siblings are indented and joined", func(t *testing.T) {
		renderer := NewStackTreeRenderer("main", "main", childrenOf(map[string][]string{
			"main":  {"feat1", "feat3"},
			"feat1": {"feat2"},
		}))
		renderer.SetAnnotation("feat3", BranchAnnotation{PRNumber: 3, CustomLabel: "needs merge"})

		require.Equal(t, []string{
			"◯ feat2",
			"│",
			"◯ feat1",
			"│",
			"│  ◯ feat3 #3 needs merge",
			"│  │",
			"├──┘",
			"◉ main",
			"│",
		}, renderer.RenderStack())
	})

	t.Run("three children", func(t *testing.T) {
		renderer := NewStackTreeRenderer("", "main", childrenOf(map[string][]string{
			"main": {"a", "b", "c"},
		}))

		lines := renderer.RenderStack()
		require.Contains(t, lines, "├──┴──┘")
		require.Equal(t, "│  │  ◯ c", lines[4])
	})

	t.Run("deep chains render without recursion", func(t *testing.T) {
		tree := map[string][]string{}
		parent := "main"
		for i := 0; i < 3000; i++ {
			child := parent + "x"
			if i%2 == 1 {
				child = parent + "y"
			}
			tree[parent] = []string{child}
			parent = child
		}

		lines := NewStackTreeRenderer("", "main", childrenOf(tree)).RenderStack()
		require.Len(t, lines, 2*3001)
		require.Equal(t, "◯ main", lines[len(lines)-2])
	})
}

func TestSplogWriter(t *testing.T) {
	plainColors(t)

	t.Run("debug output is gated", func(t *testing.T) {
		var out strings.Builder
		splog := NewSplogWithWriter(&out, false)
		splog.Info("Evolving %s", "feat1")
		splog.Debug("hidden")
		splog.Warn("careful")
		splog.Error("broken")
		splog.Tip("try %s", "this")

		require.Equal(t, "Evolving feat1\n⚠️  careful\n❌ broken\n💡 try this\n", out.String())
	})

	t.Run("debug output shown when enabled", func(t *testing.T) {
		var out strings.Builder
		splog := NewSplogWithWriter(&out, true)
		splog.Debug("shown %d", 1)
		splog.Newline()
		require.Equal(t, "shown 1\n\n", out.String())
	})

	t.Run("percent signs without args are printed as is", func(t *testing.T) {
		var out strings.Builder
		NewSplogWithWriter(&out, false).Info("100% done")
		require.Equal(t, "100% done\n", out.String())
	})
}

func TestSubmitProgress(t *testing.T) {
	plainColors(t)

	var out strings.Builder
	progress := NewSubmitProgress(NewSplogWithWriter(&out, false))
	progress.Landed(1, "feat1", false)
	progress.Rebased("feat2")
	progress.Failed("feat3")
	progress.Skipped("feat4")
	progress.Complete()

	require.Equal(t, "  ✓ feat1 merged as #1\n"+
		"  ✓ feat2 rebased\n"+
		"  ✗ feat3 could not be rebased\n"+
		"  ⋯ feat4 not rebased\n"+
		"\n"+
		"Rebased: 1, Failed: 1\n", out.String())
}
