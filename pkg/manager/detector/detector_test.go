package detector

import (
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	info, err := Detect()
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	if info.Arch != runtime.GOARCH {
		t.Errorf("Arch = %s, want %s", info.Arch, runtime.GOARCH)
	}

	switch runtime.GOOS {
	case "linux":
		if info.OS != OSLinux {
			t.Errorf("OS = %s, want %s", info.OS, OSLinux)
		}
	case "darwin":
		if info.OS != OSDarwin {
			t.Errorf("OS = %s, want %s", info.OS, OSDarwin)
		}
		if info.Distribution != "macos" {
			t.Errorf("Distribution = %s, want macos", info.Distribution)
		}
	case "windows":
		if info.OS != OSWindows {
			t.Errorf("OS = %s, want %s", info.OS, OSWindows)
		}
	}
}

func TestMatchesDistro(t *testing.T) {
	info := &SystemInfo{
		Distribution: "linuxmint",
		DistroFamily: []string{"ubuntu", "debian"},
	}

	if !info.MatchesDistro("linuxmint") {
		t.Error("expected direct match on linuxmint")
	}
	if !info.MatchesDistro("debian") {
		t.Error("expected family match on debian")
	}
	if info.MatchesDistro("fedora") {
		t.Error("did not expect match on fedora")
	}
}

func TestNativeManagerForDistro(t *testing.T) {
	tests := []struct {
		distro   string
		family   []string
		expected string
	}{
		{"ubuntu", nil, "apt"},
		{"fedora", nil, "dnf"},
		{"arch", nil, "pacman"},
		{"elementary", []string{"ubuntu", "debian"}, "apt"},
		{"nobara", []string{"fedora"}, "dnf"},
		{"somethingelse", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.distro, func(t *testing.T) {
			got := NativeManagerForDistro(tt.distro, tt.family)
			if got != tt.expected {
				t.Errorf("NativeManagerForDistro(%s) = %q, want %q", tt.distro, got, tt.expected)
			}
		})
	}
}
