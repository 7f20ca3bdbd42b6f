package installer

import (
	"context"
	"errors"
	"strings"

	"forge/pkg/manager"
)

// Category classifies why a package operation failed, derived from the
// failing command's combined output.
type Category string

const (
	CategoryNetwork        Category = "network"
	CategoryPermission     Category = "permission"
	CategoryPackageManager Category = "package_manager"
	CategoryFilesystem     Category = "filesystem"
	CategoryDiskSpace      Category = "disk_space"
	CategoryTimeout        Category = "timeout"
	CategoryUnknown        Category = "unknown"
)

var categoryPatterns = []struct {
	category Category
	patterns []string
}{
	{CategoryDiskSpace, []string{
		"no space left on device",
		"disk full",
		"insufficient disk space",
		"not enough space",
	}},
	{CategoryTimeout, []string{
		"timed out",
		"timeout",
		"deadline exceeded",
	}},
	{CategoryNetwork, []string{
		"could not resolve",
		"temporary failure in name resolution",
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"failed to fetch",
		"failed to download",
		"tls handshake",
		"proxy",
		"404 not found",
	}},
	{CategoryPermission, []string{
		"permission denied",
		"operation not permitted",
		"access is denied",
		"must be run as root",
		"are you root",
		"requires administrator",
		"eacces",
	}},
	{CategoryFilesystem, []string{
		"read-only file system",
		"no such file or directory",
		"file exists",
		"is a directory",
		"too many open files",
	}},
	{CategoryPackageManager, []string{
		"could not get lock",
		"unable to acquire",
		"dpkg was interrupted",
		"unable to locate package",
		"no available formula",
		"no formulae found",
		"target not found",
		"no match for argument",
		"unmet dependencies",
		"conflicts with",
		"held broken packages",
		"no packages found",
		"exit status 100",
	}},
}

var categoryHints = map[Category]string{
	CategoryNetwork:        "Check your internet connection and try again",
	CategoryPermission:     "Re-run with elevated privileges (sudo)",
	CategoryPackageManager: "Run an index update and check the package name",
	CategoryFilesystem:     "Check that the target paths exist and are writable",
	CategoryDiskSpace:      "Free up disk space and retry",
	CategoryTimeout:        "The operation took too long; retry when the system is less busy",
	CategoryUnknown:        "Check the command output above for details",
}

// Categorize inspects an error and its captured command output to pick a
// failure category.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	text := err.Error()
	var cmdErr *manager.CommandError
	if errors.As(err, &cmdErr) {
		text = cmdErr.Output + "\n" + text
	}
	text = strings.ToLower(text)

	for _, entry := range categoryPatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(text, pattern) {
				return entry.category
			}
		}
	}
	return CategoryUnknown
}

// Hint returns a one-line recovery suggestion for a category.
func Hint(category Category) string {
	if hint, ok := categoryHints[category]; ok {
		return hint
	}
	return categoryHints[CategoryUnknown]
}

// Retryable reports whether failures in this category are worth retrying
// automatically.
func Retryable(category Category) bool {
	return category == CategoryNetwork || category == CategoryTimeout
}
