package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Email    EmailConfig    `mapstructure:"email"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 数据库配置，Driver 取值 mysql / postgres / sqlite
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	CapitalMissingCreate = "create"
	CapitalMissingError  = "error"

	RemainderDrop  = "drop"
	RemainderFinal = "final"
)

// LedgerConfig 账务规则
type LedgerConfig struct {
	Currency                  string `mapstructure:"currency"`
	AllowNegativeStock        bool   `mapstructure:"allow_negative_stock"`
	CapitalMissing            string `mapstructure:"capital_missing"`
	AmortizationRemainder     string `mapstructure:"amortization_remainder"`
	ThemExpenseAdjustsCapital bool   `mapstructure:"them_expense_adjusts_capital"`
	LowStockThreshold         string `mapstructure:"low_stock_threshold"`
	AlertWindowDays           int    `mapstructure:"alert_window_days"`
	RecentSalesLimit          int    `mapstructure:"recent_sales_limit"`
	WriteRateLimit            int    `mapstructure:"write_rate_limit"` // 每分钟写请求上限，0 表示不限
}

// LowStock 低库存阈值
func (c LedgerConfig) LowStock() decimal.Decimal {
	d, err := decimal.NewFromString(c.LowStockThreshold)
	if err != nil {
		return decimal.NewFromInt(50)
	}
	return d
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	NotifyTo string `mapstructure:"notify_to"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			slog.Warn("无法读取指定配置文件", "path", configPath, "error", err)
		} else {
			slog.Info("已合并外部配置文件", "path", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/ledger")
		externalViper.AddConfigPath("$HOME/.ledger")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				slog.Warn("合并外部配置失败", "error", err)
			} else {
				slog.Info("已合并外部配置文件", "path", externalViper.ConfigFileUsed())
			}
		}
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// Validate 校验枚举类配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	switch c.Ledger.CapitalMissing {
	case CapitalMissingCreate, CapitalMissingError:
	default:
		return fmt.Errorf("ledger.capital_missing 取值应为 create 或 error: %q", c.Ledger.CapitalMissing)
	}
	switch c.Ledger.AmortizationRemainder {
	case RemainderDrop, RemainderFinal:
	default:
		return fmt.Errorf("ledger.amortization_remainder 取值应为 drop 或 final: %q", c.Ledger.AmortizationRemainder)
	}
	if _, err := decimal.NewFromString(c.Ledger.LowStockThreshold); err != nil {
		return fmt.Errorf("ledger.low_stock_threshold 不是合法数字: %w", err)
	}
	return nil
}

// MustLoadConfig 加载配置，失败则 panic
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	return cfg
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	slog.Info("当前配置",
		"port", GlobalConfig.Server.Port,
		"mode", GlobalConfig.Server.Mode,
		"db_driver", GlobalConfig.Database.Driver,
		"db_name", GlobalConfig.Database.DBName,
		"capital_missing", GlobalConfig.Ledger.CapitalMissing,
		"amortization_remainder", GlobalConfig.Ledger.AmortizationRemainder,
		"email", GlobalConfig.Email.Enabled,
	)
}

// SafeErrorMessage release 模式下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
