package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFactOverwritesExistingFact(t *testing.T) {
	ctx := dryContext(t)
	ctx.SetFact("color", "red")

	_, err := SetFact(ctx, decodeArgs(t, "color: blue\nsize: large\n"))
	require.NoError(t, err)

	facts := ctx.Facts()
	assert.Equal(t, "blue", facts["color"])
	assert.Equal(t, "large", facts["size"])
}
