package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Config описывает конфигурацию сервера коротких ссылок.
type Config struct {
	ServerAddress   string `yaml:"server_address" validate:"required"`                                           // адрес сервера
	FileStoragePath string `yaml:"file_storage_path"`                                                            // путь к журналу ссылок, пустой путь отключает журнал
	LogLevel        string `yaml:"log_level" validate:"required,oneof=debug info warn error dpanic panic fatal"` // уровень логирования
	TrustedSubnet   string `yaml:"trusted_subnet" validate:"omitempty,cidr"`                                     // доверенная подсеть для доступа к метрикам
	MaxBodySize     int64  `yaml:"max_body_size" validate:"gt=0"`                                                // максимальный размер тела запроса в байтах
	EnableHTTPS     bool   `yaml:"enable_https"`                                                                 // включает HTTPS с самоподписанным сертификатом
	ConfigPath      string `yaml:"-"`                                                                            // путь к файлу конфигурации

	envErr error
}

const (
	defaultServerAddr  = ":8080"
	defaultLogLevel    = "info"
	defaultMaxBodySize = 256
	defaultStorageFile = "goto.yml"
)

// Environment определяет доступ к переменным среды.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

type systemEnvironment struct{}

func (systemEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// SystemEnvironment возвращает доступ к переменным среды процесса.
func SystemEnvironment() Environment {
	return systemEnvironment{}
}

// New создает экземпляр конфигурации с настройками по умолчанию.
func New() Config {
	return Config{
		ServerAddress:   defaultServerAddr,
		FileStoragePath: defaultStorageFile,
		LogLevel:        defaultLogLevel,
		MaxBodySize:     defaultMaxBodySize,
	}
}

// Load собирает конфигурацию: значения по умолчанию, файл, аргументы командной строки, переменные среды.
// Каждый следующий источник переопределяет предыдущий.
func Load(args []string, env Environment) (Config, error) {
	const op = "load config"

	path := New().FromArgs(args).FromEnv(env).ConfigPath

	conf, err := New().FromFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, op)
	}

	conf = conf.FromArgs(args).FromEnv(env)
	if err := conf.Validate(); err != nil {
		return Config{}, errors.Wrap(err, op)
	}

	return conf, nil
}

// FromFile заполняет параметры конфигурации из YAML файла. Пустой путь пропускается.
func (conf Config) FromFile(path string) (Config, error) {
	const op = "read config file"

	if path == "" {
		return conf, nil
	}

	if err := cleanenv.ReadConfig(path, &conf); err != nil {
		return Config{}, errors.Wrap(err, op)
	}
	conf.ConfigPath = path

	return conf, nil
}

// FromArgs заполняет параметры конфигурации из аргументов командной строки.
func (conf Config) FromArgs(args []string) Config {
	flagSet := flag.NewFlagSet("", flag.PanicOnError)
	flagSet.StringVar(&conf.ServerAddress, "a", conf.ServerAddress, "server address")
	flagSet.StringVar(&conf.FileStoragePath, "f", conf.FileStoragePath, "file storage path")
	flagSet.StringVar(&conf.LogLevel, "l", conf.LogLevel, "log level")
	flagSet.StringVar(&conf.TrustedSubnet, "t", conf.TrustedSubnet, "trusted subnet (CIDR)")
	flagSet.StringVar(&conf.ConfigPath, "c", conf.ConfigPath, "config file path")
	flagSet.BoolVar(&conf.EnableHTTPS, "s", conf.EnableHTTPS, "enable HTTPS")

	_ = flagSet.Parse(args[1:]) // exclude command name
	return conf
}

// FromEnv заполняет параметры конфигурации из переменных среды.
// Некорректное значение переменной сохраняется и возвращается из Validate.
func (conf Config) FromEnv(env Environment) Config {
	if servAddr, ok := env.LookupEnv("SERVER_ADDRESS"); ok {
		conf.ServerAddress = servAddr
	}

	if path, ok := env.LookupEnv("FILE_STORAGE_PATH"); ok {
		conf.FileStoragePath = path
	}

	if level, ok := env.LookupEnv("LOG_LEVEL"); ok {
		conf.LogLevel = level
	}

	if subnet, ok := env.LookupEnv("TRUSTED_SUBNET"); ok {
		conf.TrustedSubnet = subnet
	}

	if path, ok := env.LookupEnv("CONFIG_PATH"); ok {
		conf.ConfigPath = path
	}

	if value, ok := env.LookupEnv("ENABLE_HTTPS"); ok {
		enable, err := strconv.ParseBool(value)
		if err != nil {
			conf.envErr = errors.Wrap(err, "ENABLE_HTTPS")
		} else {
			conf.EnableHTTPS = enable
		}
	}

	return conf
}

// Validate проверяет значения параметров конфигурации.
func (conf Config) Validate() error {
	const op = "validate config"

	if conf.envErr != nil {
		return errors.Wrap(conf.envErr, op)
	}

	if err := validator.New().Struct(conf); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}
