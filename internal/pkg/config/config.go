package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=2016h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	Workers   int           `env:"WORKERS,    default=8"`

	Mongo     MongoConfig
	Redis     RedisConfig
	OpenAI    OpenAIConfig
	S3        S3Config
	Generator GeneratorConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=adventure_api"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	DB       int           `env:"REDIS_DB,        default=0"`
	ThumbTTL time.Duration `env:"REDIS_THUMB_TTL, default=24h"`
}

type OpenAIConfig struct {
	APIKey     string `env:"OPENAI_API_KEY"`
	TextModel  string `env:"OPENAI_TEXT_MODEL,  default=gpt-4o-mini"`
	ImageModel string `env:"OPENAI_IMAGE_MODEL, default=dall-e-3"`
}

type S3Config struct {
	Bucket     string        `env:"S3_BUCKET"`
	Region     string        `env:"AWS_REGION,     default=us-east-1"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL, default=1h"`
}

type GeneratorConfig struct {
	Timeout time.Duration `env:"GENERATOR_TIMEOUT, default=60s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
