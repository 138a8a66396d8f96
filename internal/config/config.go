package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadBytes matches the 16 MiB request cap of the web form.
const DefaultMaxUploadBytes int64 = 16 << 20

type Config struct {
	Server struct {
		Port           int      `yaml:"port" validate:"min=1,max=65535"`
		MaxUploadBytes int64    `yaml:"maxUploadBytes" validate:"min=1"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	AI struct {
		APIKey  string `yaml:"apiKey" validate:"required"`
		BaseURL string `yaml:"baseURL" validate:"required,url"`
		Model   string `yaml:"model"`
	} `yaml:"ai"`

	Database struct {
		URL string `yaml:"url" validate:"required"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	} `yaml:"log"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml (boleh tidak ada), lalu timpa dengan env.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 5000
	cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Minio.Region = "us-east-1"
	return cfg
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("GROQ_API_KEY", &cfg.AI.APIKey)
	str("GROQ_API_URL", &cfg.AI.BaseURL)
	str("GROQ_MODEL", &cfg.AI.Model)
	str("DATABASE_URL", &cfg.Database.URL)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("MINIO_ENDPOINT", &cfg.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &cfg.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &cfg.Minio.SecretKey)
	str("MINIO_BUCKET", &cfg.Minio.BucketName)
	str("MINIO_REGION", &cfg.Minio.Region)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup("MINIO_USE_SSL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MINIO_USE_SSL: %w", err)
		}
		cfg.Minio.UseSSL = b
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	return nil
}

var validate = validator.New()

// Validate reports every missing or malformed field at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

// MinioEnabled is true when the document archive should be wired.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
