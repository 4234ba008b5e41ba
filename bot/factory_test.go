package bot

import (
	"testing"

	"github.com/hupe1980/chatmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	t.Run("builds registered model", func(t *testing.T) {
		m, err := NewModel(model.ProviderGroq, "llama-3.3-70b-versatile")
		require.NoError(t, err)
		assert.Equal(t, "llama-3.3-70b-versatile", m.Info().Name)
		assert.Equal(t, model.ProviderGroq, m.Info().Provider)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewModel(model.Provider("cohere"), "command-r")
		require.Error(t, err)

		var perr *model.UnsupportedProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, model.Provider("cohere"), perr.Provider)
		assert.Contains(t, err.Error(), "groq")
	})

	t.Run("unknown model name", func(t *testing.T) {
		_, err := NewModel(model.ProviderOpenAI, "gpt-9000")
		require.Error(t, err)

		var merr *model.UnsupportedModelError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, "gpt-9000", merr.Name)
		assert.NotEmpty(t, merr.Supported, "error must name the valid alternatives")
	})

	t.Run("never substitutes across providers", func(t *testing.T) {
		// A valid groq model requested under the wrong provider must fail.
		_, err := NewModel(model.ProviderAnthropic, "llama-3.3-70b-versatile")
		require.Error(t, err)

		var merr *model.UnsupportedModelError
		require.ErrorAs(t, err, &merr)
	})
}
