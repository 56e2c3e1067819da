package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/covlink/internal/model"
)

func TestLocalDumpStore(t *testing.T) {
	t.Run("creates the log directory and lookup file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")

		store, err := NewLocalDumpStore(m.Path(dir), false)
		require.NoError(t, err)

		t.Cleanup(func() { _ = store.Close() })

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = os.Stat(filepath.Join(dir, LookupFileName))
		assert.NoError(t, err)
	})

	t.Run("fails at startup when the directory cannot be created", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		_, err := NewLocalDumpStore(m.Path(filepath.Join(blocker, "logs")), false)
		assert.Error(t, err)
	})

	t.Run("appends durable lookup lines", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewLocalDumpStore(m.Path(dir), false)
		require.NoError(t, err)

		require.NoError(t, store.AppendLookup("1", "GLOBAL_TEST_SETUP"))
		require.NoError(t, store.AppendLookup("2", "A.t1___PASSED"))
		require.NoError(t, store.Close())

		data, err := os.ReadFile(filepath.Join(dir, LookupFileName))
		require.NoError(t, err)
		assert.Equal(t, "1;GLOBAL_TEST_SETUP\n2;A.t1___PASSED\n", string(data))
	})

	t.Run("append mode preserves entries from other processes", func(t *testing.T) {
		dir := t.TempDir()

		first, err := NewLocalDumpStore(m.Path(dir), true)
		require.NoError(t, err)
		require.NoError(t, first.AppendLookup("pid100_1", "parent"))
		require.NoError(t, first.Close())

		second, err := NewLocalDumpStore(m.Path(dir), true)
		require.NoError(t, err)
		require.NoError(t, second.AppendLookup("pid200_1", "child"))
		require.NoError(t, second.Close())

		data, err := os.ReadFile(filepath.Join(dir, LookupFileName))
		require.NoError(t, err)
		assert.Equal(t, "pid100_1;parent\npid200_1;child\n", string(data))
	})

	t.Run("segment files land in the log directory", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewLocalDumpStore(m.Path(dir), false)
		require.NoError(t, err)

		t.Cleanup(func() { _ = store.Close() })

		w, err := store.CreateSegment("1.log")
		require.NoError(t, err)

		_, err = w.Write([]byte("unittests\t/bin/unittests\n"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		data, err := os.ReadFile(filepath.Join(dir, "1.log"))
		require.NoError(t, err)
		assert.Equal(t, "unittests\t/bin/unittests\n", string(data))
	})

	t.Run("module list round-trips through YAML", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewLocalDumpStore(m.Path(dir), false)
		require.NoError(t, err)

		t.Cleanup(func() { _ = store.Close() })

		images := []m.Image{
			{Name: "unittests", Path: "/bin/unittests", Low: 0x400000, High: 0x410000, Main: true},
			{Name: "libhelper.so", Path: "/lib/libhelper.so", Low: 0x7f0000000000, High: 0x7f0000010000},
		}

		modulesPath := filepath.Join(dir, "modules.yaml")
		require.NoError(t, store.WriteModules(m.Path(modulesPath), images))

		data, err := os.ReadFile(modulesPath)
		require.NoError(t, err)

		var decoded []m.Image
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Equal(t, images, decoded)
	})
}
