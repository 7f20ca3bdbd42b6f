package executor

// IsRoot returns true if the current process is running as root/administrator.
func IsRoot() bool {
	return isRoot()
}

// HasSudo returns true if sudo is available on the system.
func HasSudo() bool {
	return hasSudo()
}

// CanElevate returns true if the process can elevate privileges.
func CanElevate() bool {
	return isRoot() || hasSudo()
}

type errNoPrivileges struct{}

func (e errNoPrivileges) Error() string {
	return "this operation requires root privileges, but neither running as root nor sudo is available"
}

// ErrNoPrivileges is returned when an operation requires root but cannot elevate.
var ErrNoPrivileges = errNoPrivileges{}
