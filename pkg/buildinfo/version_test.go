package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolveFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}
	got := resolve(bi, true)
	want := Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-10-01T12:00:00Z"}
	if got != want {
		t.Errorf("resolve() = %+v, want %+v", got, want)
	}
}

func TestResolveKeepsStampedValues(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)
	Version, Commit = "v1.0.0", "deadbeef"

	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}
	got := resolve(bi, true)
	if got.Version != "v1.0.0" || got.Commit != "deadbeef" || got.Date != "unknown" {
		t.Errorf("resolve() = %+v", got)
	}
	if got := resolve(nil, false); got.Version != "v1.0.0" {
		t.Errorf("resolve(nil) = %+v", got)
	}
}

func TestTemplate(t *testing.T) {
	if tpl := Template(); !strings.HasPrefix(tpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tpl)
	}
}
