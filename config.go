package minapi

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultBodyMaxLength is the default ceiling for Body binders. It sits just
// under 85,000 bytes so a fully buffered body never lands in a large allocation.
const DefaultBodyMaxLength = 85_000 - 1

// DefaultMultipartMemory is the memory budget for parsing multipart forms (32 MB).
const DefaultMultipartMemory = 32 << 20

// Config holds the binding limits applied by the router. Zero fields fall
// back to the package defaults.
type Config struct {
	BodyMaxLength   int64  `env:"MINAPI_BODY_MAX_LENGTH" envDefault:"84999"`
	MultipartMemory int64  `env:"MINAPI_MULTIPART_MEMORY" envDefault:"33554432"`
	JSONIndent      string `env:"MINAPI_JSON_INDENT"`
	RequestIDHeader string `env:"MINAPI_REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
}

// ConfigFromEnv loads a Config from environment variables.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) bodyMaxLength() int64 {
	if c.BodyMaxLength > 0 {
		return c.BodyMaxLength
	}
	return DefaultBodyMaxLength
}

func (c Config) multipartMemory() int64 {
	if c.MultipartMemory > 0 {
		return c.MultipartMemory
	}
	return DefaultMultipartMemory
}
