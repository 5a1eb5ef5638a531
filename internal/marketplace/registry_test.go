package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	mp, err := r.Lookup("kwork")
	require.NoError(t, err)
	assert.Equal(t, "kwork", mp.Name())

	mp, err = r.Lookup("freelancehunt")
	require.NoError(t, err)
	assert.Equal(t, "freelancehunt", mp.Name())
}

func TestRegistryLookupUnknown(t *testing.T) {
	_, err := NewRegistry().Lookup("upwork")

	var unknownErr *UnknownError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "upwork", unknownErr.Name)
	assert.Contains(t, err.Error(), "upwork")
}

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []string{"freelancehunt", "kwork"}, NewRegistry().Names())
}
