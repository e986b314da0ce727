package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvConfigFile переменная окружения с путем к конфигурации
const EnvConfigFile = "NOTES_CONFIG"

// DefaultConfigFile файл конфигурации по умолчанию
const DefaultConfigFile = "config.yml"

// Формат: ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults расширяет переменные окружения с поддержкой дефолтных значений
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		matches := envPattern.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}

		varName := matches[1]
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}

// typed приводит строку к bool или int, если она так выглядит
func typed(s string) any {
	if s == "true" || s == "false" {
		b, _ := strconv.ParseBool(s)
		return b
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}

// ResolveFile возвращает путь к конфигурации: флаг, затем NOTES_CONFIG, затем config.yml
func ResolveFile(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return env
	}
	return DefaultConfigFile
}

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	ext := strings.TrimLeft(filepath.Ext(configFile), ".")

	v.SetConfigFile(configFile)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}
	return v, nil
}

// decode раскрывает ${VAR:-default} и собирает конфигурацию.
// Раскрытые значения кладутся в отдельный экземпляр viper: исходный остается
// чистым, иначе Set перекрыл бы значения, перечитанные при изменении файла.
func decode[C any](v *viper.Viper) (*C, error) {
	out := viper.New()
	for _, k := range v.AllKeys() {
		raw := v.Get(k)
		s, ok := raw.(string)
		if !ok {
			out.Set(k, raw)
			continue
		}
		if s == "" {
			continue
		}
		out.Set(k, typed(expandEnvWithDefaults(s)))
	}

	cfg := new(C)
	if err := out.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	return cfg, nil
}

// InitConfig читает конфигурационный файл и возвращает экземпляр конфигурации
// Использует generic для работы с произвольным типом конфигурации
func InitConfig[C any](configFile string) (*C, error) {
	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}
	return decode[C](v)
}

// Watch следит за файлом конфигурации и вызывает onChange с новой конфигурацией
// или с ошибкой разбора. Возвращает конфигурацию на момент запуска.
func Watch[C any](configFile string, onChange func(*C, error)) (*C, error) {
	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := decode[C](v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode[C](v))
	})
	v.WatchConfig()

	return cfg, nil
}

// Load читает конфигурацию приложения, подставляет значения по умолчанию и проверяет ее
func Load(configFile string) (*Config, error) {
	cfg, err := InitConfig[Config](configFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
