// Package settings 读取验证配置来源、日志等运行参数
package settings

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings 运行参数
// 优先级（高到低）：环境变量 > 配置文件 > 默认值
type Settings struct {
	// ModelsContract 模型配置来源：json、yaml、xml、sql
	ModelsContract string `mapstructure:"reve-models-contract"`
	// ModelsSrc 模型配置文件路径（文件来源时有效）
	ModelsSrc string `mapstructure:"reve-models-src"`
	// ValuesContract 规则参数来源：json、yaml、xml、sql、redis
	ValuesContract string `mapstructure:"reve-values-contract"`
	// ValuesSrc 规则参数文件路径（文件来源时有效）
	ValuesSrc string `mapstructure:"reve-values-src"`

	SQLDriver string `mapstructure:"reve-sql-driver"`
	SQLDSN    string `mapstructure:"reve-sql-dsn"`

	RedisAddr string `mapstructure:"reve-redis-addr"`
	RedisKey  string `mapstructure:"reve-redis-key"`

	LogLevel string `mapstructure:"reve-log-level"`
	LogFile  string `mapstructure:"reve-log-file"`

	// Locale 默认错误消息语言
	Locale string `mapstructure:"reve-locale"`
	// LastWriteWins 模型查找键冲突时以后出现的为准
	LastWriteWins bool `mapstructure:"reve-last-write-wins"`
}

// 默认值
const (
	DefaultModelsContract = "json"
	DefaultModelsSrc      = "validations.json"
	DefaultValuesContract = "json"
	DefaultValuesSrc      = "rules.json"
	DefaultSQLDriver      = "sqlite"
	DefaultRedisKey       = "reve:rule-arguments"
	DefaultLogLevel       = "info"
	DefaultLocale         = "en"
)

// Load 读取配置，file 为空时只使用环境变量和默认值
func Load(file string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("reve-models-contract", DefaultModelsContract)
	v.SetDefault("reve-models-src", DefaultModelsSrc)
	v.SetDefault("reve-values-contract", DefaultValuesContract)
	v.SetDefault("reve-values-src", DefaultValuesSrc)
	v.SetDefault("reve-sql-driver", DefaultSQLDriver)
	v.SetDefault("reve-sql-dsn", "")
	v.SetDefault("reve-redis-addr", "")
	v.SetDefault("reve-redis-key", DefaultRedisKey)
	v.SetDefault("reve-log-level", DefaultLogLevel)
	v.SetDefault("reve-log-file", "")
	v.SetDefault("reve-locale", DefaultLocale)
	v.SetDefault("reve-last-write-wins", false)

	// 键本身带 reve- 前缀：reve-models-src → REVE_MODELS_SRC
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", file, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	s.normalize()
	return &s, nil
}

// normalize 来源类型统一为小写
func (s *Settings) normalize() {
	s.ModelsContract = strings.ToLower(strings.TrimSpace(s.ModelsContract))
	s.ValuesContract = strings.ToLower(strings.TrimSpace(s.ValuesContract))
	s.SQLDriver = strings.ToLower(strings.TrimSpace(s.SQLDriver))
}

// Default 默认配置
func Default() *Settings {
	s := &Settings{
		ModelsContract: DefaultModelsContract,
		ModelsSrc:      DefaultModelsSrc,
		ValuesContract: DefaultValuesContract,
		ValuesSrc:      DefaultValuesSrc,
		SQLDriver:      DefaultSQLDriver,
		RedisKey:       DefaultRedisKey,
		LogLevel:       DefaultLogLevel,
		Locale:         DefaultLocale,
	}
	return s
}
