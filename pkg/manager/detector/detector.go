// Package detector handles OS and distribution detection.
package detector

import (
	"runtime"
)

// OSType represents the detected operating system type.
type OSType string

const (
	OSLinux   OSType = "linux"
	OSDarwin  OSType = "darwin"
	OSWindows OSType = "windows"
	OSUnknown OSType = "unknown"
)

// SystemInfo contains information about the detected system.
type SystemInfo struct {
	OS           OSType
	Arch         string
	Distribution string   // Linux distribution ID (e.g., "ubuntu", "arch")
	DistroFamily []string // Related distributions (from ID_LIKE)
	PrettyName   string   // Human-readable name
	VersionID    string   // Distribution version
}

// Detect detects the current system's OS and distribution.
func Detect() (*SystemInfo, error) {
	info := &SystemInfo{
		Arch: runtime.GOARCH,
	}

	switch runtime.GOOS {
	case "linux":
		info.OS = OSLinux
		linuxInfo, err := DetectLinux()
		if err != nil {
			return info, err
		}
		info.Distribution = linuxInfo.ID
		info.DistroFamily = linuxInfo.IDLike
		info.PrettyName = linuxInfo.PrettyName
		info.VersionID = linuxInfo.VersionID
	case "darwin":
		info.OS = OSDarwin
		info.Distribution = "macos"
		info.PrettyName = "macOS"
	case "windows":
		info.OS = OSWindows
		info.Distribution = "windows"
		info.PrettyName = "Windows"
	default:
		info.OS = OSUnknown
	}

	return info, nil
}

// MatchesDistro checks if the system matches any of the given distribution
// identifiers, either directly or through the ID_LIKE family.
func (s *SystemInfo) MatchesDistro(distros ...string) bool {
	for _, d := range distros {
		if s.Distribution == d {
			return true
		}
		for _, family := range s.DistroFamily {
			if family == d {
				return true
			}
		}
	}
	return false
}

// NativeManagerForDistro maps a Linux distribution to its native package
// manager, checking the ID_LIKE family when the direct ID is unknown.
func NativeManagerForDistro(distro string, family []string) string {
	known := map[string]string{
		"ubuntu":      "apt",
		"debian":      "apt",
		"linuxmint":   "apt",
		"pop":         "apt",
		"fedora":      "dnf",
		"rhel":        "dnf",
		"centos":      "dnf",
		"rocky":       "dnf",
		"arch":        "pacman",
		"manjaro":     "pacman",
		"endeavouros": "pacman",
	}

	if mgr, ok := known[distro]; ok {
		return mgr
	}
	for _, f := range family {
		if mgr, ok := known[f]; ok {
			return mgr
		}
	}
	return ""
}
