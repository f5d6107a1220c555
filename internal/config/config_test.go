package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnvironment map[string]string

func (e fakeEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

func TestFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "args contain only app name",
			args: []string{"goto"},
			want: New(),
		},
		{
			name: "args contain server address",
			args: []string{"goto", "-a", ":8000"},
			want: func() Config {
				c := New()
				c.ServerAddress = ":8000"
				return c
			}(),
		},
		{
			name: "args contain all parameters",
			args: []string{
				"goto",
				"-a=:9000",
				"-f=/tmp/urls.yml",
				"-l=debug",
				"-t=10.0.0.0/8",
				"-c=/etc/goto.yml",
				"-s",
			},
			want: Config{
				ServerAddress:   ":9000",
				FileStoragePath: "/tmp/urls.yml",
				LogLevel:        "debug",
				TrustedSubnet:   "10.0.0.0/8",
				MaxBodySize:     defaultMaxBodySize,
				ConfigPath:      "/etc/goto.yml",
				EnableHTTPS:     true,
			},
		},
		{
			name: "empty file storage path",
			args: []string{"goto", "-f="},
			want: func() Config {
				c := New()
				c.FileStoragePath = ""
				return c
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().FromArgs(tt.args)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("failed to parse args", func(t *testing.T) {
		args := []string{"goto", "-a"}

		assert.Panics(t, func() { _ = New().FromArgs(args) })
	})
}

func TestFromEnv(t *testing.T) {
	t.Run("env overrides args", func(t *testing.T) {
		env := fakeEnvironment{
			"SERVER_ADDRESS":    ":7000",
			"FILE_STORAGE_PATH": "",
			"LOG_LEVEL":         "warn",
			"TRUSTED_SUBNET":    "192.168.0.0/16",
			"CONFIG_PATH":       "goto.conf.yml",
			"ENABLE_HTTPS":      "true",
		}

		got := New().FromArgs([]string{"goto", "-a", ":8000", "-f", "urls.yml"}).FromEnv(env)

		assert.Equal(t, Config{
			ServerAddress:   ":7000",
			FileStoragePath: "",
			LogLevel:        "warn",
			TrustedSubnet:   "192.168.0.0/16",
			MaxBodySize:     defaultMaxBodySize,
			ConfigPath:      "goto.conf.yml",
			EnableHTTPS:     true,
		}, got)
	})

	t.Run("malformed boolean fails validation", func(t *testing.T) {
		got := New().FromEnv(fakeEnvironment{"ENABLE_HTTPS": "sometimes"})

		assert.False(t, got.EnableHTTPS)
		err := got.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENABLE_HTTPS")
	})

	t.Run("env is empty", func(t *testing.T) {
		got := New().FromEnv(fakeEnvironment{})

		assert.Equal(t, New(), got)
	})
}

func TestFromFile(t *testing.T) {
	t.Run("read config file", func(t *testing.T) {
		path := writeConfig(t, "server_address: \":9090\"\nlog_level: debug\nmax_body_size: 1024\n")

		got, err := New().FromFile(path)

		require.NoError(t, err)
		assert.Equal(t, ":9090", got.ServerAddress)
		assert.Equal(t, "debug", got.LogLevel)
		assert.Equal(t, int64(1024), got.MaxBodySize)
		assert.Equal(t, defaultStorageFile, got.FileStoragePath)
		assert.Equal(t, path, got.ConfigPath)
	})

	t.Run("path is empty", func(t *testing.T) {
		got, err := New().FromFile("")

		require.NoError(t, err)
		assert.Equal(t, New(), got)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := New().FromFile(filepath.Join(t.TempDir(), "missing.yml"))

		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "trusted subnet", modify: func(c *Config) { c.TrustedSubnet = "127.0.0.0/24" }},
		{name: "invalid trusted subnet", modify: func(c *Config) { c.TrustedSubnet = "127.0.0.1" }, wantErr: true},
		{name: "unknown log level", modify: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "empty server address", modify: func(c *Config) { c.ServerAddress = "" }, wantErr: true},
		{name: "zero body size", modify: func(c *Config) { c.MaxBodySize = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.modify(&c)

			err := c.Validate()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("args and env override file", func(t *testing.T) {
		path := writeConfig(t, "server_address: \":9090\"\nlog_level: debug\ntrusted_subnet: 10.0.0.0/8\n")
		env := fakeEnvironment{
			"CONFIG_PATH": path,
			"LOG_LEVEL":   "error",
		}

		got, err := Load([]string{"goto", "-a", ":8081"}, env)

		require.NoError(t, err)
		assert.Equal(t, ":8081", got.ServerAddress)
		assert.Equal(t, "error", got.LogLevel)
		assert.Equal(t, "10.0.0.0/8", got.TrustedSubnet)
	})

	t.Run("config path from args", func(t *testing.T) {
		path := writeConfig(t, "file_storage_path: data.yml\n")

		got, err := Load([]string{"goto", "-c", path}, fakeEnvironment{})

		require.NoError(t, err)
		assert.Equal(t, "data.yml", got.FileStoragePath)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Load([]string{"goto", "-l", "loud"}, fakeEnvironment{})

		assert.Error(t, err)
	})

	t.Run("enable https is not a boolean", func(t *testing.T) {
		_, err := Load([]string{"goto"}, fakeEnvironment{"ENABLE_HTTPS": "sometimes"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENABLE_HTTPS")
	})
}

func TestSystemEnvironment(t *testing.T) {
	t.Setenv("GOTO_TEST_VARIABLE", "value")

	got, ok := SystemEnvironment().LookupEnv("GOTO_TEST_VARIABLE")

	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
