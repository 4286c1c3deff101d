package version_test

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/paramspace/pkg/version"
)

// Tests here mutate package state and must not run in parallel.

func TestApply_FillsUnsetFields(t *testing.T) {
	restore := snapshot()
	defer restore()

	version.ProbeApply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v1.2.3", version.Version)
	assert.Equal(t, "0123456789ab", version.Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", version.Date)
}

func TestApply_KeepsLinkerValues(t *testing.T) {
	restore := snapshot()
	defer restore()

	version.Version = "v9.0.0"
	version.Commit = "abc"

	version.ProbeApply(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}},
	})

	assert.Equal(t, "v9.0.0", version.Version)
	assert.Equal(t, "abc", version.Commit)
}

func TestString(t *testing.T) {
	restore := snapshot()
	defer restore()

	version.Version, version.Commit, version.Date = "v1", "c", "d"

	assert.Equal(t, "paramspace v1 (commit: c, built: d)", version.String("paramspace"))
}

func snapshot() func() {
	v, c, d := version.Version, version.Commit, version.Date

	return func() {
		version.Version, version.Commit, version.Date = v, c, d
	}
}
