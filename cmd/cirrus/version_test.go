package main

import (
	"runtime"
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	origVersion := Version
	origGitCommit := GitCommit
	origBuildDate := BuildDate
	defer func() {
		Version = origVersion
		GitCommit = origGitCommit
		BuildDate = origBuildDate
	}()

	Version = "0.1.0-test"
	GitCommit = "abc123"
	BuildDate = "2026-08-30"

	info := buildInfo()
	for _, want := range []string{"0.1.0-test", "abc123", "2026-08-30", runtime.Version()} {
		if !strings.Contains(info, want) {
			t.Errorf("buildInfo() missing %q:\n%s", want, info)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"run":      false,
		"validate": false,
		"version":  false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
