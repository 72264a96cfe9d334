package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// 游戏规则相关配置
	SabotageUnitsRequired int `mapstructure:"sabotage_units_required"`
	// Bot 行动间隔的上下界，单位毫秒
	BotMinIntervalMs int `mapstructure:"bot_min_interval_ms"`
	BotMaxIntervalMs int `mapstructure:"bot_max_interval_ms"`
	// 会话过期时间，单位分钟
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes"`
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func InitConfig() *AppConfig {
	v := viper.New()

	v.SetConfigFile("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	// 游戏规则的默认值，配置文件中可以覆盖
	v.SetDefault("sabotage_units_required", 5)
	v.SetDefault("bot_min_interval_ms", 2500)
	v.SetDefault("bot_max_interval_ms", 6500)
	v.SetDefault("session_ttl_minutes", 60)

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("解析配置失败: %w", err))
	}

	return &config
}
