package manager

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"forge/pkg/manager/detector"
)

// Registry manages all registered package managers and provides unified access.
type Registry struct {
	managers map[string]Manager
	native   Manager
	sysInfo  *detector.SystemInfo
	mu       sync.RWMutex
}

// NewRegistry creates an empty package manager registry.
func NewRegistry() *Registry {
	return &Registry{
		managers: make(map[string]Manager),
	}
}

// Register adds a manager to the registry.
func (r *Registry) Register(mgr Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[mgr.Name()] = mgr
}

// Detect identifies the system and its native package manager.
func (r *Registry) Detect() error {
	info, err := detector.Detect()
	if err != nil {
		return fmt.Errorf("failed to detect system: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sysInfo = info

	var nativeName string
	switch info.OS {
	case detector.OSLinux:
		nativeName = detector.NativeManagerForDistro(info.Distribution, info.DistroFamily)
	case detector.OSDarwin:
		nativeName = "brew"
	case detector.OSWindows:
		nativeName = detector.WindowsManager()
	}

	if nativeName != "" {
		if mgr, ok := r.managers[nativeName]; ok && mgr.IsAvailable() {
			r.native = mgr
		}
	}

	return nil
}

// Native returns the detected native package manager for this system.
func (r *Registry) Native() Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.native
}

// Get returns a specific manager by name.
func (r *Registry) Get(name string) (Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mgr, ok := r.managers[name]
	return mgr, ok
}

// Available returns all available (installed) package managers, native first.
func (r *Registry) Available() []Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var available []Manager
	for _, mgr := range r.managers {
		if mgr.IsAvailable() {
			available = append(available, mgr)
		}
	}

	nativeName := ""
	if r.native != nil {
		nativeName = r.native.Name()
	}

	sort.SliceStable(available, func(i, j int) bool {
		if available[i].Name() == nativeName {
			return true
		}
		if available[j].Name() == nativeName {
			return false
		}
		return available[i].Name() < available[j].Name()
	})

	return available
}

// All returns all registered managers (including unavailable ones).
func (r *Registry) All() []Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	managers := make([]Manager, 0, len(r.managers))
	for _, mgr := range r.managers {
		managers = append(managers, mgr)
	}

	sort.Slice(managers, func(i, j int) bool {
		return managers[i].Name() < managers[j].Name()
	})
	return managers
}

// SystemInfo returns the detected system information.
func (r *Registry) SystemInfo() *detector.SystemInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sysInfo
}

// ForSource returns the manager for a source string. Source can be a manager
// name ("apt") or the alias "native".
func (r *Registry) ForSource(source string) (Manager, error) {
	if source == "native" {
		native := r.Native()
		if native == nil {
			return nil, fmt.Errorf("no native package manager detected")
		}
		return native, nil
	}

	if mgr, ok := r.Get(source); ok {
		if !mgr.IsAvailable() {
			return nil, fmt.Errorf("package manager '%s' is not available on this system", source)
		}
		return mgr, nil
	}

	return nil, fmt.Errorf("unknown package source: %s", source)
}

// SearchAll searches for packages across all available managers concurrently.
func (r *Registry) SearchAll(ctx context.Context, query string, opts SearchOpts) ([]Package, error) {
	available := r.Available()
	if len(available) == 0 {
		return nil, fmt.Errorf("no package managers available")
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  []Package
		firstErr error
	)

	for _, mgr := range available {
		wg.Add(1)
		go func(m Manager) {
			defer wg.Done()

			pkgs, err := m.Search(ctx, query, opts)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", m.Name(), err)
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			results = append(results, pkgs...)
			mu.Unlock()
		}(mgr)
	}

	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Source != results[j].Source {
			return results[i].Source < results[j].Source
		}
		return results[i].Name < results[j].Name
	})

	return results, firstErr
}
