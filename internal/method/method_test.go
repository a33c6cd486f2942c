package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection(t *testing.T) {
	c, err := NewCollection("payment", Method{Name: "cash"}, Method{Name: "card"})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Exists("card"))
	assert.False(t, c.Exists("bitcoin"))
	assert.Equal(t, []string{"card", "cash"}, c.Names())
	assert.Equal(t, "cash", c.All()[0].Name)

	_, err = c.Get("bitcoin")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCollection_Duplicate(t *testing.T) {
	_, err := NewCollection("dispatch", Method{Name: "manual"}, Method{Name: "manual"})
	assert.Error(t, err)

	_, err = NewCollection("dispatch", Method{})
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	assert.True(t, Payments().Exists("card"))
	assert.Equal(t, "refund", Refunds().Kind())
	assert.Equal(t, Payments().Len(), Refunds().Len())
	assert.True(t, Dispatches().Exists("manual"))
}
