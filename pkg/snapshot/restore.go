package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"forge/pkg/manager"
)

// RestoreOpts configures a restore operation.
type RestoreOpts struct {
	DryRun      bool
	AutoConfirm bool

	// Sources limits the restore to specific package managers.
	Sources []string
}

// RestorePlan describes what restoring a snapshot will do. Packages
// installed since the snapshot are uninstalled. Packages missing relative
// to the snapshot are only reported: their original versions and install
// state are not retained, so they are not reinstalled.
type RestorePlan struct {
	Target   *Snapshot
	Current  *Snapshot
	Diff     *Diff
	ToRemove map[string][]string // additions to uninstall, by source
	Missing  []PackageState      // in the snapshot but no longer installed
}

// IsEmpty reports whether the restore has nothing to do.
func (p *RestorePlan) IsEmpty() bool {
	for _, pkgs := range p.ToRemove {
		if len(pkgs) > 0 {
			return false
		}
	}
	return true
}

// RemoveCount returns the number of packages the restore will uninstall.
func (p *RestorePlan) RemoveCount() int {
	count := 0
	for _, pkgs := range p.ToRemove {
		count += len(pkgs)
	}
	return count
}

// Summary returns a short description of the plan.
func (p *RestorePlan) Summary() string {
	var parts []string
	if n := p.RemoveCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d to remove", n))
	}
	if n := len(p.Missing); n > 0 {
		parts = append(parts, fmt.Sprintf("%d missing (not reinstalled)", n))
	}
	if len(parts) == 0 {
		return "No changes needed"
	}
	return strings.Join(parts, ", ")
}

// PlanRestore captures the current state and computes what must be undone
// to get back to the target snapshot.
func PlanRestore(ctx context.Context, target *Snapshot, managers []manager.Manager, opts RestoreOpts) (*RestorePlan, error) {
	current, err := Capture(ctx, TriggerManual, "pre-restore state", managers)
	if err != nil {
		return nil, fmt.Errorf("failed to capture current state: %w", err)
	}

	filteredTarget := target
	filteredCurrent := current
	if len(opts.Sources) > 0 {
		sources := make(map[string]bool)
		for _, s := range opts.Sources {
			sources[s] = true
		}
		filteredTarget = filterBySource(target, sources)
		filteredCurrent = filterBySource(current, sources)
	}

	// Diff from snapshot to now: Added = installed since, Removed = gone since.
	diff := Compare(filteredTarget, filteredCurrent)

	plan := &RestorePlan{
		Target:   target,
		Current:  current,
		Diff:     diff,
		ToRemove: make(map[string][]string),
	}

	for _, change := range diff.Added() {
		plan.ToRemove[change.Source] = append(plan.ToRemove[change.Source], change.Package)
	}
	for _, change := range diff.Removed() {
		plan.Missing = append(plan.Missing, PackageState{
			Name:    change.Package,
			Version: change.OldVersion,
			Source:  change.Source,
		})
	}

	for source := range plan.ToRemove {
		sort.Strings(plan.ToRemove[source])
	}
	sort.Slice(plan.Missing, func(i, j int) bool {
		if plan.Missing[i].Source != plan.Missing[j].Source {
			return plan.Missing[i].Source < plan.Missing[j].Source
		}
		return plan.Missing[i].Name < plan.Missing[j].Name
	})

	return plan, nil
}

func filterBySource(snap *Snapshot, sources map[string]bool) *Snapshot {
	filtered := &Snapshot{
		ID:        snap.ID,
		Timestamp: snap.Timestamp,
		Label:     snap.Label,
		Trigger:   snap.Trigger,
		Targets:   snap.Targets,
	}
	for _, pkg := range snap.Packages {
		if sources[pkg.Source] {
			filtered.Packages = append(filtered.Packages, pkg)
		}
	}
	return filtered
}

// RestoreFailure records one package that could not be uninstalled.
type RestoreFailure struct {
	Package string
	Source  string
	Err     error
}

// RestoreResult reports what a restore actually did.
type RestoreResult struct {
	Removed  int
	Failures []RestoreFailure
	Missing  []PackageState
}

// Ok reports whether every uninstall succeeded.
func (r *RestoreResult) Ok() bool {
	return len(r.Failures) == 0
}

// Execute uninstalls the plan's additions one package at a time. A failed
// uninstall never aborts the rest; failures are collected into the result.
func Execute(ctx context.Context, plan *RestorePlan, managers []manager.Manager, opts RestoreOpts) *RestoreResult {
	mgrMap := make(map[string]manager.Manager)
	for _, mgr := range managers {
		mgrMap[mgr.Name()] = mgr
	}

	result := &RestoreResult{Missing: plan.Missing}

	sources := make([]string, 0, len(plan.ToRemove))
	for source := range plan.ToRemove {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		mgr, ok := mgrMap[source]
		if !ok {
			for _, pkg := range plan.ToRemove[source] {
				result.Failures = append(result.Failures, RestoreFailure{
					Package: pkg,
					Source:  source,
					Err:     fmt.Errorf("package manager not available: %s", source),
				})
			}
			continue
		}

		for _, pkg := range plan.ToRemove[source] {
			if opts.DryRun {
				result.Removed++
				continue
			}

			uninstallOpts := manager.UninstallOpts{
				AutoConfirm: opts.AutoConfirm,
				DryRun:      opts.DryRun,
			}
			if err := mgr.Uninstall(ctx, []string{pkg}, uninstallOpts); err != nil {
				result.Failures = append(result.Failures, RestoreFailure{
					Package: pkg,
					Source:  source,
					Err:     err,
				})
				continue
			}
			result.Removed++
		}
	}

	return result
}

// Restore plans and executes a rollback to the snapshot with the given ID.
func Restore(ctx context.Context, store *Store, id string, managers []manager.Manager, opts RestoreOpts) (*RestorePlan, *RestoreResult, error) {
	target, err := store.Get(id)
	if err != nil {
		return nil, nil, err
	}

	plan, err := PlanRestore(ctx, target, managers, opts)
	if err != nil {
		return nil, nil, err
	}

	result := Execute(ctx, plan, managers, opts)
	return plan, result, nil
}

// Undo rolls back to the snapshot taken before the most recent one.
func Undo(ctx context.Context, store *Store, managers []manager.Manager, opts RestoreOpts) (*RestorePlan, *RestoreResult, error) {
	snapshots, err := store.List(2, "")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snapshots) < 2 {
		return nil, nil, fmt.Errorf("not enough snapshots to undo (need at least 2)")
	}

	plan, err := PlanRestore(ctx, &snapshots[1], managers, opts)
	if err != nil {
		return nil, nil, err
	}

	result := Execute(ctx, plan, managers, opts)
	return plan, result, nil
}
