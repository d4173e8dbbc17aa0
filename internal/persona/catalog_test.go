package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_HasBuiltins(t *testing.T) {
	c := DefaultCatalog()
	require.Equal(t, len(Defaults()), c.Len())

	ids := make([]string, 0, c.Len())
	for _, p := range c.List() {
		ids = append(ids, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Instructions)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, p.Color)
	}
	assert.Equal(t, []string{
		IDDevilsAdvocate,
		IDSupportiveEditor,
		IDTechnicalCritic,
		IDCasualReader,
		IDSecurityAuditor,
		IDAccessibilityAdvocate,
	}, ids)
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Persona{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = NewCatalog([]Persona{{Name: "nameless"}})
	require.Error(t, err)
}

func TestCatalog_Get(t *testing.T) {
	c := DefaultCatalog()

	p, err := c.Get(IDCasualReader)
	require.NoError(t, err)
	assert.Equal(t, "Casual Reader", p.Name)

	_, err = c.Get("nope")
	require.ErrorIs(t, err, ErrUnknownPersona)
}

func TestCatalog_Resolve(t *testing.T) {
	c := DefaultCatalog()

	t.Run("empty selects all", func(t *testing.T) {
		assert.Len(t, c.Resolve(nil), c.Len())
		assert.Len(t, c.Resolve([]string{}), c.Len())
	})

	t.Run("keeps requested order and skips unknown", func(t *testing.T) {
		got := c.Resolve([]string{IDDevilsAdvocate, "ghost", IDTechnicalCritic})
		require.Len(t, got, 2)
		assert.Equal(t, IDDevilsAdvocate, got[0].ID)
		assert.Equal(t, IDTechnicalCritic, got[1].ID)
	})

	t.Run("repeated ids run once at first position", func(t *testing.T) {
		got := c.Resolve([]string{IDTechnicalCritic, IDDevilsAdvocate, IDTechnicalCritic, IDTechnicalCritic})
		require.Len(t, got, 2)
		assert.Equal(t, IDTechnicalCritic, got[0].ID)
		assert.Equal(t, IDDevilsAdvocate, got[1].ID)
	})

	t.Run("all unknown selects none", func(t *testing.T) {
		assert.Empty(t, c.Resolve([]string{"ghost"}))
	})
}

func TestCatalog_ListIsACopy(t *testing.T) {
	c := DefaultCatalog()
	list := c.List()
	list[0].Name = "mutated"

	p, err := c.Get(list[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", p.Name)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path returns defaults", func(t *testing.T) {
		c, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, len(Defaults()), c.Len())
	})

	t.Run("merge overrides and appends", func(t *testing.T) {
		path := filepath.Join(dir, "personas.yml")
		data := `personas:
  - id: casual-reader
    name: Curious Reader
    instructions: Ask questions.
    color: "#000000"
  - id: legal
    name: Legal Reviewer
    instructions: Check for liability.
    focusTags: [legal, compliance]
    color: "#111111"
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		c, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, len(Defaults())+1, c.Len())

		p, err := c.Get(IDCasualReader)
		require.NoError(t, err)
		assert.Equal(t, "Curious Reader", p.Name)

		legal, err := c.Get("legal")
		require.NoError(t, err)
		assert.Equal(t, []string{"legal", "compliance"}, legal.FocusTags)
		assert.Equal(t, "legal", c.List()[c.Len()-1].ID)
	})

	t.Run("replace uses only the file", func(t *testing.T) {
		path := filepath.Join(dir, "only.yml")
		data := "replace: true\npersonas:\n  - id: solo\n    name: Solo\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		c, err := LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		assert.Equal(t, "solo", c.List()[0].ID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.yml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(path, []byte("personas: [unterminated"), 0o644))
		_, err := LoadFile(path)
		require.Error(t, err)
	})
}
