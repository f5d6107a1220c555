package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOrWriteConfig(t *testing.T) {
	t.Run("write default config when empty", func(t *testing.T) {
		var buf bytes.Buffer

		got, err := ReadOrWriteConfig(&buf)

		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), got)
		assert.Contains(t, buf.String(), "silent: false")
		assert.Contains(t, buf.String(), "no_browser: false")
		assert.Contains(t, buf.String(), "force_replace: false")
		assert.Contains(t, buf.String(), "api_url: http://")
	})

	t.Run("read existing config", func(t *testing.T) {
		const data = "silent: true\napi_url: \"hello\""
		buf := bytes.NewBufferString(data)

		got, err := ReadOrWriteConfig(buf)

		require.NoError(t, err)
		require.NotNil(t, got.Silent)
		assert.True(t, *got.Silent)
		assert.Nil(t, got.NoBrowser)
		require.NotNil(t, got.APIURL)
		assert.Equal(t, "hello", *got.APIURL)
		assert.Zero(t, buf.Len())
	})

	t.Run("invalid data", func(t *testing.T) {
		buf := bytes.NewBufferString("what is this... it doesn't look like valid YAML!{ }}}} P{{")

		_, err := ReadOrWriteConfig(buf)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config data")
	})

	t.Run("cannot read", func(t *testing.T) {
		_, err := ReadOrWriteConfig(failingReadWriter{readErr: errors.New("oh no!")})

		require.Error(t, err)
		assert.Equal(t, "read config file: oh no!", err.Error())
	})

	t.Run("cannot write", func(t *testing.T) {
		_, err := ReadOrWriteConfig(failingReadWriter{writeErr: errors.New("that went terribly wrong!")})

		require.Error(t, err)
		assert.Equal(t, "write default config: that went terribly wrong!", err.Error())
	})
}

func TestOpenOrCreateConfig(t *testing.T) {
	t.Run("create config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".goto", "config.yml")

		_, err := OpenOrCreateConfig(path)

		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "api_url")
	})

	t.Run("open existing config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("api_url: \"http://hello.world\"\n"), 0o600))

		got, err := OpenOrCreateConfig(path)

		require.NoError(t, err)
		require.NotNil(t, got.APIURL)
		assert.Equal(t, "http://hello.world", *got.APIURL)
	})

	t.Run("path is a directory", func(t *testing.T) {
		_, err := OpenOrCreateConfig(t.TempDir())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "open config file")
	})

	t.Run("config directory cannot be created", func(t *testing.T) {
		parent := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(parent, nil, 0o600))

		_, err := OpenOrCreateConfig(filepath.Join(parent, ".goto", "config.yml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "create config directory")
	})
}

type failingReadWriter struct {
	readErr  error
	writeErr error
}

func (f failingReadWriter) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return 0, io.EOF
}

func (f failingReadWriter) Write(p []byte) (int, error) {
	return 0, f.writeErr
}
