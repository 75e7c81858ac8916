package cli

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/pipeline"
)

// Config is the layout of a declutter.toml file.
//
//	[pipeline]
//	resolution = 2
//	budget_ms = 500
//	labels = true
//
//	[server]
//	addr = ":9000"
//	cache = "redis"
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	Pipeline pipeline.Options `toml:"pipeline"`
	Server   ServerConfig     `toml:"server"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	Cache         string `toml:"cache"`
	RedisURL      string `toml:"redis_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	CachePrefix   string `toml:"cache_prefix"`
	MaxBudgetMS   int64  `toml:"max_budget_ms"`
}

// loadConfig reads the file named by --config or $DECLUTTER_CONFIG. With
// neither set it returns an empty Config.
func (c *CLI) loadConfig() (Config, error) {
	path := c.configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		return Config{}, nil
	}
	return readConfig(path)
}

func readConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}
