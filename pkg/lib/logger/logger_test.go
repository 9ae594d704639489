package logger_test

import (
	"bytes"
	"testing"

	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{config.EnvLocal, config.EnvDev, config.EnvProd} {
		t.Run(env, func(t *testing.T) {
			log, err := logger.SetupLogger(env)
			assert.NoError(t, err)
			assert.NotNil(t, log)
		})
	}

	t.Run("unknown env", func(t *testing.T) {
		log, err := logger.SetupLogger("staging")
		assert.ErrorIs(t, err, logger.ErrUnknownEnv)
		assert.Nil(t, log)
	})
}

func TestNew_ProdWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(config.EnvProd, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("Recipe created", "recipe_id", 9)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "Recipe created", record["msg"])
	assert.Equal(t, "foodgram", record["service"])
	assert.Equal(t, "prod", record["env"])
	assert.EqualValues(t, 9, record["recipe_id"])
}

func TestNew_DevKeepsDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(config.EnvDev, &buf)
	require.NoError(t, err)

	log.Debug("Cache miss")
	assert.Contains(t, buf.String(), `"msg":"Cache miss"`)
}
