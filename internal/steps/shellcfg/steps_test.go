package shellcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
)

func testCtx() step.RunContext {
	return step.NewRunContext(context.Background())
}

func TestPromptStepRunWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config", "starship.toml")
	s := NewPromptStep("05-tweaks", path, PromptConfig{AddNewline: true, Palette: "catppuccin_mocha"})

	require.NoError(t, s.Run(testCtx()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var written PromptConfig
	require.NoError(t, toml.Unmarshal(data, &written))
	assert.True(t, written.AddNewline)
	assert.Equal(t, "catppuccin_mocha", written.Palette)
}

func TestPromptStepCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starship.toml")
	config := PromptConfig{AddNewline: true, CommandTimeout: 1000}
	s := NewPromptStep("05-tweaks", path, config)

	status, err := s.Check(testCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsRun, status, "missing file needs a run")

	require.NoError(t, s.Run(testCtx()))

	status, err = s.Check(testCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, status)
}

func TestPromptStepCheckDetectsDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starship.toml")
	s := NewPromptStep("05-tweaks", path, PromptConfig{AddNewline: true, Palette: "catppuccin_mocha"})
	require.NoError(t, s.Run(testCtx()))

	require.NoError(t, os.WriteFile(path, []byte("add_newline = false\npalette = \"dracula\"\n"), 0o644))

	status, err := s.Check(testCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsRun, status)
}

func TestPromptStepCheckRewritesUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starship.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [ valid toml"), 0o644))

	s := NewPromptStep("05-tweaks", path, PromptConfig{AddNewline: true})

	status, err := s.Check(testCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsRun, status)
}
