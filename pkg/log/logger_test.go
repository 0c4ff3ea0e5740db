package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)
	defer SetLevel(Notice)

	logger := New("logtest")

	SetLevel(Notice)
	logger.Infof("hidden %d", 1)
	logger.Noticef("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "[logtest]")

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("debug %s", "line")
	assert.Contains(t, buf.String(), "debug line")
}
