// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetDebug(false)
	SafePrintf("hidden %d", 1)
	Warnf("level %s skipped", "c1a0")
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "level c1a0 skipped")

	buf.Reset()
	SetDebug(true)
	defer SetDebug(false)
	Debugf("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	With("level", "c2a1").Warn("atlas exhausted")
	assert.Contains(t, buf.String(), "c2a1")
	assert.Contains(t, buf.String(), "atlas exhausted")
}
