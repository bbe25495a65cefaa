package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("accepting the defaults", func(t *testing.T) {
		require.NoError(t, Default().Validate())

		config, err := Parse([]byte(""))

		require.NoError(t, err)
		require.Equal(t, Default(), config, "Empty document should keep every default")
	})

	t.Run("overriding only the given keys", func(t *testing.T) {
		data := []byte(`
search:
  simulations: 100
  duration: 250ms
selfplay:
  symmetries: true
arena:
  threshold: 0.6
learning:
  seed: 7
`)

		config, err := Parse(data)

		require.NoError(t, err)
		require.Equal(t, 100, config.Search.Simulations)
		require.Equal(t, 250*time.Millisecond, config.Search.Duration)
		require.True(t, config.SelfPlay.Symmetries)
		require.Equal(t, 0.6, config.Arena.Threshold)
		require.Equal(t, uint64(7), config.Learning.Seed)
		require.Equal(t, Default().Search.Exploration, config.Search.Exploration, "Missing keys should keep defaults")
		require.Equal(t, Default().Learning.Episodes, config.Learning.Episodes)
	})

	t.Run("rejecting invalid values", func(t *testing.T) {
		invalid := []string{
			"search: {simulations: 0}",
			"search: {exploration: -1}",
			"selfplay: {temperature: -0.5}",
			"arena: {threshold: 1.5}",
			"learning: {episodes: 0}",
			"game: {size: 0}",
		}
		for _, data := range invalid {
			_, err := Parse([]byte(data))

			require.Error(t, err, "%q should be rejected", data)
		}
	})

	t.Run("rejecting malformed YAML", func(t *testing.T) {
		_, err := Parse([]byte("search: ["))

		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("reading a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output_dir: runs\n"), 0o644))

		config, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, "runs", config.OutputDir)
	})

	t.Run("failing on a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
	})
}
