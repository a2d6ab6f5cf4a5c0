package progressbar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewManualProgressBar(&out, 10, 4)
	assert.Equal(t, 0.0, bar.Progress())

	bar.Increment()
	assert.Equal(t, 0.25, bar.Progress())
	assert.Contains(t, bar.String(), "25.00%")

	for i := 0; i < 10; i++ {
		bar.Increment()
	}
	assert.Equal(t, 1.0, bar.Progress())
	assert.Equal(t, 10, strings.Count(bar.String(), "█"))

	bar.Display()
	bar.Close()
	assert.Contains(t, out.String(), "100.00%")
}
