package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Source     SourceConfig     `mapstructure:"source"`
	S3         S3Config         `mapstructure:"s3"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Codec      CodecConfig      `mapstructure:"codec"`
	Validation ValidationConfig `mapstructure:"validation"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
}

// SourceConfig selects the backend images are fetched from. MaxFileSize of 0
// disables the download limit.
type SourceConfig struct {
	Backend             string        `mapstructure:"backend" validate:"oneof=http s3 supabase"`
	MaxFileSize         int64         `mapstructure:"max_file_size" validate:"min=0"`
	Timeout             time.Duration `mapstructure:"timeout" validate:"gt=0"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host" validate:"min=0"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
}

// S3Config is used when source.backend is s3. Without keys the credential
// chain (env, then IAM) is used.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type SupabaseConfig struct {
	URL    string `mapstructure:"url"`
	Key    string `mapstructure:"key"`
	Bucket string `mapstructure:"bucket"`
}

// RedisConfig enables the Redis counters sink. The timeouts bound every
// command, so a stalled server drops counters instead of holding requests.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"min=0"`
	Prefix       string        `mapstructure:"prefix"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" validate:"min=0"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	BufferSize   int           `mapstructure:"buffer_size" validate:"min=1"`
}

type WorkerConfig struct {
	Size      int `mapstructure:"size" validate:"min=1"`
	QueueSize int `mapstructure:"queue_size" validate:"min=0"`
}

type CodecConfig struct {
	Engine          string `mapstructure:"engine" validate:"oneof=imaging vips"`
	VipsConcurrency int    `mapstructure:"vips_concurrency" validate:"min=0"`
}

type ValidationConfig struct {
	Quality string `mapstructure:"quality" validate:"oneof=off clamp reject"`
	Alpha   string `mapstructure:"alpha" validate:"oneof=off clamp reject"`
}

// Policy converts the configured modes for the request parser.
func (v ValidationConfig) Policy() models.ValidationPolicy {
	return models.ValidationPolicy{
		Quality: models.ValidationMode(v.Quality),
		Alpha:   models.ValidationMode(v.Alpha),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("source.backend", "http")
	v.SetDefault("source.max_file_size", 10*1024*1024) // 10MB
	v.SetDefault("source.timeout", 2000*time.Millisecond)
	v.SetDefault("source.connect_timeout", 2000*time.Millisecond)
	v.SetDefault("source.max_idle_conns_per_host", 10)
	v.SetDefault("source.idle_conn_timeout", 60000*time.Millisecond)

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("supabase.bucket", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "dali")
	v.SetDefault("redis.dial_timeout", 500*time.Millisecond)
	v.SetDefault("redis.read_timeout", 200*time.Millisecond)
	v.SetDefault("redis.write_timeout", 200*time.Millisecond)
	v.SetDefault("redis.buffer_size", 1024)

	v.SetDefault("worker.size", 4)
	v.SetDefault("worker.queue_size", 64)

	v.SetDefault("codec.engine", "imaging")
	v.SetDefault("codec.vips_concurrency", 0)

	v.SetDefault("validation.quality", "off")
	v.SetDefault("validation.alpha", "off")
}

// Load reads .env, then <dir>/default.yaml and <dir>/<mode>.yaml, then the
// environment. Later layers win. Empty dir and mode fall back to CONFIG_PATH
// and RUN_MODE, then to "config" and "development".
func Load(dir, mode string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if dir == "" {
		dir = getEnv("CONFIG_PATH", "config")
	}
	if mode == "" {
		mode = getEnv("RUN_MODE", "development")
	}

	return LoadFrom(dir, mode)
}

// LoadFrom is Load without the .env step.
func LoadFrom(dir, mode string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	for _, name := range []string{"default", mode} {
		if err := mergeFile(v, filepath.Join(dir, name+".yaml")); err != nil {
			return nil, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints and the settings each backend needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Source.Backend {
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("invalid config: s3.bucket is required for the s3 backend")
		}
		if c.S3.Endpoint == "" && c.S3.Region == "" {
			return errors.New("invalid config: s3.region is required when s3.endpoint is not set")
		}
	case "supabase":
		if c.Supabase.URL == "" || c.Supabase.Bucket == "" {
			return errors.New("invalid config: supabase.url and supabase.bucket are required for the supabase backend")
		}
	}
	return nil
}
