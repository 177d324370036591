package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Account  AccountConfig  `mapstructure:"account"`
	Cron     CronConfig     `mapstructure:"cron"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	SiteURL string `mapstructure:"site_url"`
}

type LogConfig struct {
	Env string `mapstructure:"env"` // development, production
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	MailQueue  string `mapstructure:"mail_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type AccountConfig struct {
	VerificationFreshHours int `mapstructure:"verification_fresh_hours"` // 验证令牌有效窗口
	StatsCacheSeconds      int `mapstructure:"stats_cache_seconds"`      // 0 表示不缓存
}

type CronConfig struct {
	TokenSweepMinutes int `mapstructure:"token_sweep_minutes"`
}

// VerificationWindow 验证令牌有效窗口，默认 24 小时
func (c AccountConfig) VerificationWindow() time.Duration {
	if c.VerificationFreshHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.VerificationFreshHours) * time.Hour
}

func (c AccountConfig) StatsCacheTTL() time.Duration {
	return time.Duration(c.StatsCacheSeconds) * time.Second
}

func (c CronConfig) TokenSweepInterval() time.Duration {
	if c.TokenSweepMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.TokenSweepMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.env", "development")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("queue.mail_queue", "mail_queue")
	v.SetDefault("queue.max_workers", 2)
	v.SetDefault("account.verification_fresh_hours", 24)
	v.SetDefault("account.stats_cache_seconds", 60)
	v.SetDefault("cron.token_sweep_minutes", 60)
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
