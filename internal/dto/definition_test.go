package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefinitionJSON(t *testing.T) {
	doc := []byte(`{
		"COMPONENTS": {"COUNTER": [{"LABEL": "pours", "VALUE": 3}]},
		"EVENTS": [{
			"LABEL": "refill",
			"CONDITIONS": [{"LABEL": "pours", "METHOD": "Less Than", "VALUE": 1}],
			"EFFECTS": [{"LABEL": "pours", "METHOD": "Increase Count", "ARG": 5}],
			"DEACTIVATE": [{"LABEL": "pours", "METHOD": "equal_to", "VALUE": 5}]
		}],
		"CLIENT": "web"
	}`)

	def, err := dto.DecodeDefinitionJSON(doc)
	require.NoError(t, err)

	require.Len(t, def.Components[domain.KindCounter], 1)
	assert.Equal(t, "pours", def.Components[domain.KindCounter][0].Label)
	assert.Equal(t, json.Number("3"), def.Components[domain.KindCounter][0].Value)

	require.Len(t, def.Events, 1)
	ev := def.Events[0]
	assert.Equal(t, "refill", ev.Label)
	assert.Equal(t, "Less Than", ev.Conditions[0].Method)
	assert.Equal(t, json.Number("5"), ev.Effects[0].Arg)
	assert.Len(t, ev.Deactivate, 1)
	assert.Nil(t, ev.Activate)
}

func TestDecodeDefinition_AbsentKeys(t *testing.T) {
	def, err := dto.DecodeDefinition(map[string]any{
		"EVENTS": []any{},
	})
	require.NoError(t, err)
	assert.Nil(t, def.Components, "absent section stays nil")
	assert.NotNil(t, def.Events, "empty section is kept")
	assert.Empty(t, def.Events)
}

func TestDecodeDefinitionJSON_Invalid(t *testing.T) {
	_, err := dto.DecodeDefinitionJSON([]byte(`{"EVENTS": [`))
	assert.Error(t, err)

	_, err = dto.DecodeDefinition(map[string]any{"EVENTS": "nope"})
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	t.Run("Strips Control Characters", func(t *testing.T) {
		def, err := dto.DecodeDefinition(map[string]any{
			"COMPONENTS": map[string]any{
				"SIMPLE_AUDIO_PLAYER": []any{map[string]any{"LABEL": "chi\x1b[31mme", "VALUE": "/media/a\x00.mp3"}},
			},
			"EVENTS": []any{map[string]any{
				"LABEL":      "ring\tbell",
				"CONDITIONS": []any{},
				"EFFECTS":    []any{map[string]any{"LABEL": "chi\x07me", "METHOD": "play"}},
			}},
		})
		require.NoError(t, err)
		c := def.Components[domain.KindAudioPlayer][0]
		assert.Equal(t, "chi[31mme", c.Label)
		assert.Equal(t, "/media/a.mp3", c.Value)
		assert.Equal(t, "ring\tbell", def.Events[0].Label, "tabs are kept")
		assert.Equal(t, "chime", def.Events[0].Effects[0].Label)
	})

	t.Run("Rejects Invalid UTF-8", func(t *testing.T) {
		_, err := dto.DecodeDefinition(map[string]any{
			"EVENTS": []any{map[string]any{"LABEL": "bad\xff", "CONDITIONS": []any{}, "EFFECTS": []any{}}},
		})
		assert.ErrorIs(t, err, dto.ErrInvalidUTF8)
	})

	t.Run("Rejects Long Labels", func(t *testing.T) {
		long := make([]byte, dto.MaxLabelSize+1)
		for i := range long {
			long[i] = 'a'
		}
		err := dto.Sanitize(&domain.Definition{
			Components: domain.ComponentSet{domain.KindCounter: {{Label: string(long)}}},
		})
		assert.ErrorIs(t, err, dto.ErrLabelTooLarge)
	})
}
