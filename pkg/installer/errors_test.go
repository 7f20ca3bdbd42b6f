package installer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"forge/pkg/manager"
)

func cmdErr(output string) error {
	return &manager.CommandError{
		Manager: "apt",
		Output:  output,
		Err:     errors.New("exit status 100"),
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnknown},
		{"dns", cmdErr("Could not resolve 'archive.ubuntu.com'"), CategoryNetwork},
		{"refused", cmdErr("connect: Connection refused"), CategoryNetwork},
		{"fetch", cmdErr("E: Failed to fetch http://..."), CategoryNetwork},
		{"sudo", cmdErr("E: Could not open lock file - open (13: Permission denied)"), CategoryPermission},
		{"root", cmdErr("are you root?"), CategoryPermission},
		{"lock", cmdErr("E: Could not get lock /var/lib/dpkg/lock-frontend"), CategoryPackageManager},
		{"missing", cmdErr("E: Unable to locate package notarealpackage"), CategoryPackageManager},
		{"formula", cmdErr("Error: No available formula with the name \"xyz\""), CategoryPackageManager},
		{"pacman", cmdErr("error: target not found: xyz"), CategoryPackageManager},
		{"space", cmdErr("write: No space left on device"), CategoryDiskSpace},
		{"rofs", cmdErr("mkdir: Read-only file system"), CategoryFilesystem},
		{"slow", cmdErr("Connection timed out after 30000 ms"), CategoryTimeout},
		{"ctx", context.DeadlineExceeded, CategoryTimeout},
		{"mystery", cmdErr("segmentation fault"), CategoryUnknown},
		{"plain", errors.New("something odd"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.err); got != tt.want {
				t.Errorf("Categorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategorizeWrappedCommandError(t *testing.T) {
	err := fmt.Errorf("install failed: %w", cmdErr("No space left on device"))
	if got := Categorize(err); got != CategoryDiskSpace {
		t.Errorf("Categorize through wrapping = %v, want disk_space", got)
	}
}

func TestDiskSpaceBeatsNetwork(t *testing.T) {
	// Output mentioning both a download and a full disk is a disk problem.
	err := cmdErr("Failed to download package: No space left on device")
	if got := Categorize(err); got != CategoryDiskSpace {
		t.Errorf("Categorize() = %v, want disk_space", got)
	}
}

func TestHint(t *testing.T) {
	for _, cat := range []Category{
		CategoryNetwork, CategoryPermission, CategoryPackageManager,
		CategoryFilesystem, CategoryDiskSpace, CategoryTimeout, CategoryUnknown,
	} {
		if Hint(cat) == "" {
			t.Errorf("Hint(%v) is empty", cat)
		}
	}
	if Hint("bogus") != Hint(CategoryUnknown) {
		t.Error("unknown category should fall back to the generic hint")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(CategoryNetwork) || !Retryable(CategoryTimeout) {
		t.Error("network and timeout failures should be retryable")
	}
	if Retryable(CategoryPackageManager) || Retryable(CategoryUnknown) {
		t.Error("package-manager and unknown failures should not be retryable")
	}
}
