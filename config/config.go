package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug            bool   `envconfig:"debug"`
	Port             int    `envconfig:"port" default:"8080"`
	Env              string `envconfig:"env" default:"dev"`
	PostgresHost     string `envconfig:"postgres_host" default:"localhost"`
	PostgresPort     int    `envconfig:"postgres_port" default:"5432"`
	PostgresUser     string `envconfig:"postgres_user"`
	PostgresPassword string `envconfig:"postgres_password"`
	PostgresDB       string `envconfig:"postgres_db"`
	PostgresSSLMode  string `envconfig:"postgres_sslmode" default:"disable"`
	JWTSecret        string `envconfig:"jwt_secret" required:"true"`
	AllowedOrigins   string `envconfig:"allowed_origins"`

	StorageDriver      string `envconfig:"storage_driver" default:"disk"`
	UploadDir          string `envconfig:"upload_dir" default:"./uploads"`
	PublicBaseURL      string `envconfig:"public_base_url"`
	AWSBucket          string `envconfig:"aws_bucket"`
	AWSRegion          string `envconfig:"aws_region"`
	AWSAccessKeyID     string `envconfig:"aws_access_key_id"`
	AWSSecretAccessKey string `envconfig:"aws_secret_access_key"`
	MaxAttachmentSize  int64  `envconfig:"max_attachment_size" default:"10485760"`

	RedisAddr     string `envconfig:"redis_addr"`
	RedisPassword string `envconfig:"redis_password"`
	RedisDB       int    `envconfig:"redis_db"`
	RedisChannel  string `envconfig:"redis_channel" default:"photohire:messages"`

	SendRateLimit  uint          `envconfig:"send_rate_limit" default:"10"`
	SendRateWindow time.Duration `envconfig:"send_rate_window" default:"1s"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("photohire", c)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	return c, nil
}

// Origins splits AllowedOrigins on commas. An empty list means any origin.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}
