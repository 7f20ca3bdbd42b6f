package detector

import (
	"os/exec"
)

// WindowsManagers returns available package managers on Windows in priority order.
func WindowsManagers() []string {
	var managers []string

	// winget (Windows Package Manager) is preferred
	if _, err := exec.LookPath("winget"); err == nil {
		managers = append(managers, "winget")
	}
	if _, err := exec.LookPath("choco"); err == nil {
		managers = append(managers, "choco")
	}

	return managers
}

// WindowsManager returns the preferred available package manager on Windows.
func WindowsManager() string {
	managers := WindowsManagers()
	if len(managers) > 0 {
		return managers[0]
	}
	return ""
}
