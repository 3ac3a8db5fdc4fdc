package root_test

import (
	"testing"

	"inmova/bank-import/cmd/root"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "bank-import", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "Norma 43 and CAMT.053")
	assert.NotNil(t, root.Cmd.RunE)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	root.Init()
	root.Init()

	tests := []struct {
		name      string
		shorthand string
	}{
		{"input", "i"},
		{"output", "o"},
		{"company", ""},
		{"config", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestGetContainer(t *testing.T) {
	t.Chdir(t.TempDir())
	root.AppConfig = nil
	root.AppContainer = nil

	c, err := root.GetContainer(&cobra.Command{})
	require.NoError(t, err)
	assert.NotNil(t, c.GetPipeline())

	again, err := root.GetContainer(&cobra.Command{})
	require.NoError(t, err)
	assert.Same(t, c, again)

	root.Cmd.PersistentPostRun(root.Cmd, nil)
	assert.Nil(t, root.AppContainer)
}

func TestGetConfig_BadFile(t *testing.T) {
	root.AppConfig = nil
	original := root.SharedFlags.ConfigFile
	root.SharedFlags.ConfigFile = "/nonexistent/config.yaml"
	defer func() { root.SharedFlags.ConfigFile = original }()

	_, err := root.GetConfig()
	assert.Error(t, err)
}
