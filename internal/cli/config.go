package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL адрес сервиса коротких ссылок по умолчанию.
const DefaultAPIURL = "http://127.0.0.1:8080"

// Config описывает файл настроек клиента. Незаданный параметр имеет значение nil.
type Config struct {
	APIURL       *string `yaml:"api_url"`
	ForceReplace *bool   `yaml:"force_replace"`
	Silent       *bool   `yaml:"silent"`
	NoBrowser    *bool   `yaml:"no_browser"`
}

// DefaultConfig возвращает настройки, которые записываются в новый файл настроек.
func DefaultConfig() Config {
	apiURL := DefaultAPIURL
	forceReplace, silent, noBrowser := false, false, false

	return Config{
		APIURL:       &apiURL,
		ForceReplace: &forceReplace,
		Silent:       &silent,
		NoBrowser:    &noBrowser,
	}
}

// DefaultConfigPath возвращает путь к файлу настроек в домашнем каталоге пользователя.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locate home directory")
	}

	return filepath.Join(home, ".goto", "config.yml"), nil
}

// OpenOrCreateConfig читает файл настроек. Отсутствующий файл создается с настройками по умолчанию.
func OpenOrCreateConfig(path string) (Config, error) {
	const ownerReadWritePermission os.FileMode = 0o600

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Config{}, errors.Wrap(err, "create config directory")
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, ownerReadWritePermission)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config file")
	}
	defer func() {
		_ = file.Close()
	}()

	return ReadOrWriteConfig(file)
}

// ReadOrWriteConfig читает настройки. Если данных нет, записывает и возвращает настройки по умолчанию.
func ReadOrWriteConfig(rw io.ReadWriter) (Config, error) {
	data, err := io.ReadAll(rw)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	if len(data) == 0 {
		conf := DefaultConfig()
		out, err := yaml.Marshal(conf)
		if err != nil {
			return Config{}, errors.Wrap(err, "encode default config")
		}

		if _, err := rw.Write(out); err != nil {
			return Config{}, errors.Wrap(err, "write default config")
		}

		return conf, nil
	}

	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return Config{}, errors.Wrap(err, "parse config data")
	}

	return conf, nil
}
