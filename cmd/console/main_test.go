package main

import (
	"testing"

	"seabattle/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	c, err := parseCell(" b7 ")
	require.NoError(t, err)
	assert.Equal(t, game.Cell{Row: 6, Col: 1}, c)
	assert.Equal(t, "B7", label(c))

	for _, bad := range []string{"", "7", "B", "Bx", "?3"} {
		_, err := parseCell(bad)
		assert.Error(t, err, bad)
	}
}
