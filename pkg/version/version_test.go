package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoString(t *testing.T) {
	info := &Info{Version: "1.2.0"}
	assert.Equal(t, "1.2.0", info.String())

	info.GitCommit = "abc123"
	assert.Equal(t, "1.2.0+abc123", info.String())
}

func TestVersionCmdPrintsJSON(t *testing.T) {
	var out bytes.Buffer
	VersionCmd.SetOut(&out)
	require.NoError(t, VersionCmd.RunE(VersionCmd, nil))

	var info Info
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
