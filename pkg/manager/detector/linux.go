package detector

import (
	"bufio"
	"os"
	"strings"
)

// LinuxInfo contains information parsed from /etc/os-release.
type LinuxInfo struct {
	ID         string   // Distribution ID (e.g., "ubuntu", "arch", "fedora")
	IDLike     []string // Related distributions
	VersionID  string   // Version number (e.g., "22.04", "39")
	PrettyName string   // Human-readable name
}

// DetectLinux detects the Linux distribution by reading /etc/os-release.
func DetectLinux() (*LinuxInfo, error) {
	info := &LinuxInfo{}

	if err := parseOSRelease(info, "/etc/os-release"); err == nil {
		return info, nil
	}
	// Some systems only ship the usr-lib copy.
	if err := parseOSRelease(info, "/usr/lib/os-release"); err == nil {
		return info, nil
	}

	info.ID = "unknown"
	info.PrettyName = "Unknown Linux"
	return info, nil
}

// parseOSRelease parses an os-release style file into info.
func parseOSRelease(info *LinuxInfo, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)

		switch key {
		case "ID":
			info.ID = value
		case "ID_LIKE":
			info.IDLike = strings.Fields(value)
		case "VERSION_ID":
			info.VersionID = value
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}

	if info.ID == "" {
		info.ID = "unknown"
	}
	return scanner.Err()
}
