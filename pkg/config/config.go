package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/mentalsmash/yaml-serde/pkg/log"
	"github.com/mentalsmash/yaml-serde/pkg/serde"
	"github.com/mentalsmash/yaml-serde/pkg/serde/format"
	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
)

// Config 是序列化层的进程级默认配置。
// 所有字段都可以被单次调用的选项覆盖。
type Config struct {
	// DefaultFormat 是格式标识为空时入口函数使用的格式。
	DefaultFormat string `mapstructure:"defaultFormat" json:"defaultFormat" yaml:"defaultFormat"`
	// Unsafe 为 true 时默认跳过封闭集合校验。
	Unsafe bool `mapstructure:"unsafe" json:"unsafe" yaml:"unsafe"`
	// Partial 为 true 时默认省略文档首尾标记。
	Partial bool `mapstructure:"partial" json:"partial" yaml:"partial"`
	// Log 是日志子系统配置。
	Log log.Config `mapstructure:"log" json:"log" yaml:"log"`
}

// Default 返回内建默认值。
func Default() *Config {
	return &Config{
		DefaultFormat: format.YAML,
		Log: log.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load 从 YAML/JSON 配置文件加载配置,文件类型按扩展名推断,
// 未出现的键保持内建默认值。
func Load(path string) (*Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetConfigFile(path)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	}
	cfg.registerDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, merr.WrapErrIoKeyNotFound(path)
		}
		return nil, merr.WrapErrIoFailed(path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, merr.WrapErrParameterInvalidMsg("malformed config file %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// registerDefaults 把内建默认值登记给 viper,文件中未出现的键回落到这里。
func (c *Config) registerDefaults(v *viper.Viper) {
	v.SetDefault("defaultFormat", c.DefaultFormat)
	v.SetDefault("unsafe", c.Unsafe)
	v.SetDefault("partial", c.Partial)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

// Validate 检查配置自洽性,目前只要求默认格式已登记。
func (c *Config) Validate() error {
	if _, err := format.Lookup(c.DefaultFormat); err != nil {
		return merr.WrapErrParameterInvalidMsg("unknown default format %q", c.DefaultFormat)
	}
	return nil
}

// Apply 把配置落到进程级全局状态:初始化全局日志器,
// 并把序列化默认项写入 serde 包。
func (c *Config) Apply() error {
	logger, props, err := log.InitLogger(&c.Log)
	if err != nil {
		return err
	}
	log.ReplaceGlobals(logger, props)
	if err := serde.SetDefaultFormat(c.DefaultFormat); err != nil {
		return err
	}
	serde.SetDefaultOptions(c.Unsafe, c.Partial)
	return nil
}
