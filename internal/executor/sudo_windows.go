//go:build windows

package executor

import (
	"os/exec"

	"golang.org/x/sys/windows"
)

// isRoot returns true if the process runs with administrator privileges.
func isRoot() bool {
	var sid *windows.SID

	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	token := windows.Token(0)
	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// hasSudo reports whether a sudo-like launcher exists. Windows 11 ships
// sudo.exe; gsudo is a common third-party equivalent.
func hasSudo() bool {
	if _, err := exec.LookPath("sudo"); err == nil {
		return true
	}
	_, err := exec.LookPath("gsudo")
	return err == nil
}
