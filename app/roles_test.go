package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoles(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, printRoles(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], "ROLE"))
	assert.True(t, strings.HasPrefix(lines[1], "guest"))
	assert.Contains(t, lines[1], "view_public_content")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "-"))
	assert.Contains(t, lines[4], "modify_app_settings")
}
