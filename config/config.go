package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/encoder"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string        `json:"logLevel" yaml:"logLevel"`
	SkipErrors bool          `json:"skipErrors" yaml:"skipErrors"`
	Fetcher    FetcherConfig `json:"fetcher" yaml:"fetcher"`
	Storage    StorageConfig `json:"storage" yaml:"storage"`
	Fields     []FieldConfig `json:"fields" yaml:"fields"`
}

type FetcherConfig struct {
	Timeout   int           `json:"timeout" yaml:"timeout"` // 毫秒
	Proxy     []string      `json:"proxy" yaml:"proxy"`
	WaitTime  int64         `json:"waitTime" yaml:"waitTime"` // 随机休眠时间，秒
	Cookie    string        `json:"cookie" yaml:"cookie"`
	UserAgent string        `json:"userAgent" yaml:"userAgent"`
	Limits    []LimitConfig `json:"limits" yaml:"limits"`
}

type LimitConfig struct {
	EventCount int `json:"eventCount" yaml:"eventCount"`
	EventDur   int `json:"eventDur" yaml:"eventDur"` // 秒
	Bucket     int `json:"bucket" yaml:"bucket"`     // 桶大小
}

type StorageConfig struct {
	Type       string `json:"type" yaml:"type"` // empty | mysql
	SQLURL     string `json:"sqlURL" yaml:"sqlURL"`
	Table      string `json:"table" yaml:"table"`
	BatchCount int    `json:"batchCount" yaml:"batchCount"`
}

var defaultConfig = Config{
	LogLevel: "INFO",
	Fetcher: FetcherConfig{
		Timeout: 5000,
	},
	Storage: StorageConfig{
		Type:       "empty",
		Table:      "records",
		BatchCount: 1,
	},
}

// Load reads a config file. The format follows the extension: .toml, .json,
// .yaml or .yml.
func Load(path string) (*Config, error) {
	c := defaultConfig

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = loadMicro(path, toml.NewEncoder(), &c)
	case ".json":
		err = loadMicro(path, nil, &c)
	case ".yaml", ".yml":
		err = loadYAML(path, &c)
	default:
		err = fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s:%w", path, err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func loadMicro(path string, enc encoder.Encoder, v interface{}) error {
	var (
		copts []config.Option
		sopts = []source.Option{file.WithPath(path)}
	)
	if enc != nil {
		copts = append(copts, config.WithReader(json.NewReader(reader.WithEncoder(enc))))
		sopts = append(sopts, source.WithEncoder(enc))
	}

	cfg, err := config.NewConfig(copts...)
	if err != nil {
		return err
	}
	defer cfg.Close()

	if err := cfg.Load(file.NewSource(sopts...)); err != nil {
		return err
	}

	return cfg.Scan(v)
}

func loadYAML(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(b, v)
}

func (c *Config) validate() error {
	if len(c.Fields) == 0 {
		return errors.New("config has no fields")
	}
	seen := make(map[string]bool, len(c.Fields))
	for i, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q is declared twice", f.Name)
		}
		seen[f.Name] = true
		if f.Handler != nil && len(f.Handlers) > 0 {
			return fmt.Errorf("field %q sets both handler and handlers", f.Name)
		}
	}

	switch c.Storage.Type {
	case "empty":
	case "mysql":
		if c.Storage.SQLURL == "" {
			return errors.New("mysql storage needs sqlURL")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	return nil
}
