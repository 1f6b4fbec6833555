package harvest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/itsmostafa/autoindex/internal/fsscan"
	"github.com/itsmostafa/autoindex/internal/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `#define WIDGET_MAX 10
template <class T>
class widget : public base {
};
struct gizmo {
};
typedef unsigned long size_type;
int compute(int a, int b) {
  if (a) return helper(b);
  return 0;
}
void declared(void);
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func categories(reg *terms.Registry) map[string]string {
	out := make(map[string]string)
	for _, t := range reg.Terms() {
		out[t.Term] = t.Category
	}
	return out
}

func TestScanText(t *testing.T) {
	reg := terms.NewRegistry()
	h := New(reg, nil, quietLogger())

	res := h.ScanText("widget.hpp", source)
	assert.Empty(t, res.Skipped)
	assert.Len(t, res.Added, 6)
	assert.Equal(t, map[string]string{
		"WIDGET_MAX": CategoryMacro,
		"widget":     CategoryClass,
		"gizmo":      CategoryClass,
		"size_type":  CategoryTypedef,
		"compute":    CategoryFunction,
		"declared":   CategoryFunction,
	}, categories(reg))
	assert.False(t, reg.Has("helper"), "calls after a keyword are not definitions")
	assert.False(t, reg.Has("if"))
}

func TestHarvestedPatternsAreCaseSensitiveWords(t *testing.T) {
	reg := terms.NewRegistry()
	New(reg, nil, quietLogger()).ScanText("x.hpp", "struct gizmo {};")

	require.Equal(t, 1, reg.Len())
	m := reg.Terms()[0].Match
	assert.True(t, m.Find("the gizmo class"))
	assert.False(t, m.Find("the Gizmo class"))
	assert.False(t, m.Find("gizmos"))
}

func TestScanTextIdempotent(t *testing.T) {
	reg := terms.NewRegistry()
	h := New(reg, nil, quietLogger())

	h.ScanText("a.hpp", source)
	n := reg.Len()
	res := h.ScanText("a.hpp", source)
	assert.Empty(t, res.Added)
	assert.Equal(t, n, reg.Len())
	assert.Equal(t, Stats{Added: n}, h.Stats())
}

func TestFirstRegistrationWins(t *testing.T) {
	reg := terms.NewRegistry()
	explicit, err := reg.AddExplicit("gizmo", "", "", "concept")
	require.NoError(t, err)

	New(reg, nil, quietLogger()).ScanText("a.hpp", source)
	var gizmos []*terms.Term
	for _, term := range reg.Terms() {
		if term.Term == "gizmo" {
			gizmos = append(gizmos, term)
		}
	}
	require.Len(t, gizmos, 1)
	assert.Same(t, explicit, gizmos[0])
}

func TestCategoryTemplates(t *testing.T) {
	reg := terms.NewRegistry()
	require.NoError(t, reg.SetTemplate(terms.KindClass, "", `\s*<`))
	New(reg, nil, quietLogger()).ScanText("a.hpp", "struct gizmo {};\n#define gizmo_max 3\n")

	for _, term := range reg.Terms() {
		switch term.Term {
		case "gizmo":
			assert.True(t, term.Match.Find("gizmo <int>"))
			assert.False(t, term.Match.Find("gizmo alone"))
		case "gizmo_max":
			assert.True(t, term.Match.Find("gizmo_max alone"), "macro patterns ignore templates")
		}
	}
}

func TestPatternErrorSkipsName(t *testing.T) {
	reg := terms.NewRegistry()
	require.NoError(t, reg.SetTemplate(terms.KindFunction, "(", ""))
	h := New(reg, nil, quietLogger())

	res := h.ScanText("a.hpp", source)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "compute", res.Skipped[0].Name)
	assert.Equal(t, CategoryFunction, res.Skipped[0].Category)
	assert.Contains(t, res.Skipped[0].Error(), `"compute"`)
	assert.False(t, reg.Has("compute"))
	assert.True(t, reg.Has("widget"), "other names are still harvested")
	assert.Equal(t, 2, h.Stats().Skipped)
}

func TestScanFileAndDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hpp"), []byte("struct alpha {};"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.hpp"), []byte("struct beta {};"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("struct gamma {};"), 0o644))

	t.Run("flat", func(t *testing.T) {
		reg := terms.NewRegistry()
		h := New(reg, fsscan.NewLister(), quietLogger())
		require.NoError(t, h.ScanDir(dir, `.*\.hpp`, false))
		assert.True(t, reg.Has("alpha"))
		assert.False(t, reg.Has("beta"))
		assert.False(t, reg.Has("gamma"))
		assert.Equal(t, 1, h.Stats().Files)
	})

	t.Run("recursive", func(t *testing.T) {
		reg := terms.NewRegistry()
		h := New(reg, nil, quietLogger())
		require.NoError(t, h.ScanDir(dir, `.*\.hpp`, true))
		assert.True(t, reg.Has("alpha"))
		assert.True(t, reg.Has("beta"))
	})

	t.Run("bad mask", func(t *testing.T) {
		h := New(terms.NewRegistry(), nil, quietLogger())
		assert.Error(t, h.ScanDir(dir, `(`, false))
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		h := New(terms.NewRegistry(), nil, quietLogger())
		err := h.ScanFile(filepath.Join(dir, "missing.hpp"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestHarvesterIsScriptScanner(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hpp"), []byte("#define ALPHA 1\n"), 0o644))

	reg := terms.NewRegistry()
	s := &terms.Script{Registry: reg, Scanner: New(reg, nil, quietLogger()), BasePath: dir}
	require.NoError(t, s.RunFile(writeScript(t, "!scan a.hpp\n!exclude ALPHA\n")))
	assert.Zero(t, reg.Len())
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terms.idx")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
