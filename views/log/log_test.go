package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeight(t *testing.T) {
	assert.Equal(t, 15, Height(60), "capped")
	assert.Equal(t, 10, Height(30), "a third of the screen")
	assert.Equal(t, 5, Height(16))
}
