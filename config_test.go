package minapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/minapi"
)

func TestConfigFromEnv_defaults(t *testing.T) {
	cfg, err := minapi.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, minapi.Config{
		BodyMaxLength:   minapi.DefaultBodyMaxLength,
		MultipartMemory: minapi.DefaultMultipartMemory,
		RequestIDHeader: minapi.DefaultRequestIDHeader,
	}, cfg)
}

func TestConfigFromEnv_overrides(t *testing.T) {
	t.Setenv("MINAPI_BODY_MAX_LENGTH", "1024")
	t.Setenv("MINAPI_MULTIPART_MEMORY", "2048")
	t.Setenv("MINAPI_JSON_INDENT", "  ")
	t.Setenv("MINAPI_REQUEST_ID_HEADER", "X-Correlation-ID")

	cfg, err := minapi.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, minapi.Config{
		BodyMaxLength:   1024,
		MultipartMemory: 2048,
		JSONIndent:      "  ",
		RequestIDHeader: "X-Correlation-ID",
	}, cfg)
}

func TestConfigFromEnv_invalid(t *testing.T) {
	t.Setenv("MINAPI_BODY_MAX_LENGTH", "lots")

	_, err := minapi.ConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
