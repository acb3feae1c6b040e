package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	v, err := Load(t.TempDir(), "absent")
	require.NoError(t, err)
	require.NotNil(t, v)
}

func TestLoad_SearchPath(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	req.NoError(os.WriteFile(filepath.Join(dir, "relay.yaml"), []byte("node:\n  mode: cluster\n"), 0o644))

	v, err := Load(dir, "relay")
	req.NoError(err)
	req.Equal("cluster", v.GetString("node.mode"))
}

func TestLoad_ExplicitFile(t *testing.T) {
	req := require.New(t)
	file := filepath.Join(t.TempDir(), "custom.yaml")
	req.NoError(os.WriteFile(file, []byte("pubsub:\n  topic: relay\n"), 0o644))
	t.Setenv(EnvConfigFile, file)

	v, err := Load("./does-not-exist", "config")
	req.NoError(err)
	req.Equal("relay", v.GetString("pubsub.topic"))
}

func TestLoad_InvalidFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("node: [\n"), 0o644))
	t.Setenv(EnvConfigFile, file)

	_, err := Load(".", "config")
	require.Error(t, err)
}
