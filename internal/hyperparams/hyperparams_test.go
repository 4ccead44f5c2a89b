package hyperparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer(t *testing.T) {
	t.Run("preserves insertion order", func(t *testing.T) {
		c := New()
		c.Set("epochs", 10)
		c.Set("learning_rate", 0.001)
		c.Set("momentum", 0.99)

		params := c.All()
		require.Len(t, params, 3)
		assert.Equal(t, "epochs", params[0].Name)
		assert.Equal(t, "learning_rate", params[1].Name)
		assert.Equal(t, "momentum", params[2].Name)
	})

	t.Run("stringifies values", func(t *testing.T) {
		c := New()
		c.Set("learning_rate", 0.001)

		v, ok := c.Get("learning_rate")
		require.True(t, ok)
		assert.Equal(t, "0.001", v)
	})

	t.Run("overwrite keeps the original position", func(t *testing.T) {
		c := New()
		c.Set("epochs", 10)
		c.Set("learning_rate", 0.001)
		c.Set("epochs", 20)

		params := c.All()
		require.Len(t, params, 2)
		assert.Equal(t, "epochs", params[0].Name)
		assert.Equal(t, "20", params[0].Value)
	})

	t.Run("missing key reports absence", func(t *testing.T) {
		c := New()
		_, ok := c.Get("batch_size")
		assert.False(t, ok)
	})
}
