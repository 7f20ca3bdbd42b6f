// Package installer drives catalog-based installs: it resolves each
// catalog entry to a package manager, runs pre/post-install hooks,
// applies the retry policy, and streams progress to the shared progress
// file.
package installer

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"forge/internal/executor"
	"forge/internal/history"
	"forge/internal/progress"
	"forge/pkg/catalog"
	"forge/pkg/manager"
	"forge/pkg/snapshot"
)

// Options selects what to install and how.
type Options struct {
	// Packages are catalog entry names. Empty means the whole catalog
	// for this platform, optionally narrowed by Category.
	Packages []string
	Category string

	DryRun      bool
	AutoConfirm bool

	// Snapshot captures the package state before the run so it can be
	// rolled back.
	Snapshot bool
}

// Failure describes one package that could not be installed.
type Failure struct {
	Package  string
	Category Category
	Hint     string
	Err      error
}

// Report summarizes a completed run.
type Report struct {
	Installed  []string
	Failed     []Failure
	Skipped    []string // manual-install entries
	SnapshotID string
	Elapsed    time.Duration
}

// Ok reports whether every attempted install succeeded.
func (r *Report) Ok() bool {
	return len(r.Failed) == 0
}

// Driver executes catalog installs.
type Driver struct {
	catalog   *catalog.Catalog
	registry  *manager.Registry
	tracker   *progress.Tracker
	snapshots *snapshot.Store
	history   *history.Store
	exec      *executor.Executor
	retryCfg  RetryConfig
	out       io.Writer
}

// New creates a driver. Tracker, snapshot store and history store are
// optional; pass nil to disable the corresponding side effects.
func New(cat *catalog.Catalog, registry *manager.Registry, opts ...DriverOption) *Driver {
	d := &Driver{
		catalog:  cat,
		registry: registry,
		exec:     executor.New(false, false),
		retryCfg: DefaultRetryConfig(),
		out:      io.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithTracker streams run progress to the given tracker.
func WithTracker(t *progress.Tracker) DriverOption {
	return func(d *Driver) { d.tracker = t }
}

// WithSnapshots enables pre-run snapshots into the given store.
func WithSnapshots(s *snapshot.Store) DriverOption {
	return func(d *Driver) { d.snapshots = s }
}

// WithHistory records the run in the given history store.
func WithHistory(h *history.Store) DriverOption {
	return func(d *Driver) { d.history = h }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg RetryConfig) DriverOption {
	return func(d *Driver) { d.retryCfg = cfg }
}

// WithOutput sets the writer for human-readable run log lines.
func WithOutput(w io.Writer) DriverOption {
	return func(d *Driver) { d.out = w }
}

func (d *Driver) logf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format+"\n", args...)
}

// selectRecords resolves the run options to concrete catalog entries.
func (d *Driver) selectRecords(opts Options) ([]*catalog.PackageRecord, error) {
	if len(opts.Packages) == 0 {
		records := d.catalog.ForCurrentPlatform(opts.Category)
		if len(records) == 0 {
			return nil, fmt.Errorf("no catalog entries for this platform")
		}
		return records, nil
	}

	var records []*catalog.PackageRecord
	for _, name := range opts.Packages {
		rec, ok := d.catalog.Get(name)
		if !ok {
			return nil, fmt.Errorf("package not in catalog: %s", name)
		}
		if !rec.AppliesTo(runtime.GOOS) {
			return nil, fmt.Errorf("package %s does not support %s", rec.Name, runtime.GOOS)
		}
		records = append(records, rec)
	}
	return records, nil
}

// resolveManager maps a catalog install type to a registered manager.
// "cask" resolves to Homebrew with cask installs enabled.
func (d *Driver) resolveManager(installType string) (manager.Manager, bool, error) {
	switch installType {
	case "cask":
		mgr, err := d.registry.ForSource("brew")
		return mgr, true, err
	case "", "native":
		mgr, err := d.registry.ForSource("native")
		return mgr, false, err
	default:
		mgr, err := d.registry.ForSource(installType)
		return mgr, false, err
	}
}

// runHook runs a pre/post-install shell snippet.
func (d *Driver) runHook(ctx context.Context, script string) error {
	if script == "" {
		return nil
	}
	if runtime.GOOS == "windows" {
		return d.exec.Run(ctx, "cmd", "/C", script)
	}
	return d.exec.Run(ctx, "sh", "-c", script)
}

// Run installs the selected catalog entries. The returned report is
// non-nil whenever the run started; a non-nil error means the run could
// not start or was interrupted.
func (d *Driver) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()

	records, err := d.selectRecords(opts)
	if err != nil {
		return nil, err
	}

	d.exec.SetDryRun(opts.DryRun)
	report := &Report{}

	if opts.Snapshot && d.snapshots != nil && !opts.DryRun {
		snap, err := snapshot.CaptureAndSave(ctx, d.snapshots, snapshot.TriggerInstall, "pre-install", d.registry.Available())
		if err != nil {
			return nil, fmt.Errorf("failed to capture pre-run snapshot: %w", err)
		}
		report.SnapshotID = snap.ID
		d.logf("Captured snapshot %s (%d packages)", snap.ID, snap.PackageCount())
	}

	d.trackInit(len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			d.trackComplete(progress.StatusFailed, "Run interrupted")
			report.Elapsed = time.Since(start)
			d.record(opts, report)
			return report, err
		}

		percent := i * 100 / len(records)
		d.trackUpdate(percent, rec.Name, fmt.Sprintf("Installing %s", rec.Name))

		if rec.Manual() {
			d.logf("Skipping %s: manual install (%s)", rec.Name, rec.Notes)
			report.Skipped = append(report.Skipped, rec.Name)
			continue
		}

		if err := d.installOne(ctx, rec, opts); err != nil {
			category := Categorize(err)
			report.Failed = append(report.Failed, Failure{
				Package:  rec.Name,
				Category: category,
				Hint:     Hint(category),
				Err:      err,
			})
			d.trackFailed(rec.Name, string(category))
			d.logf("Failed %s: %v (%s)", rec.Name, err, category)
			continue
		}

		report.Installed = append(report.Installed, rec.Name)
		d.trackInstalled(rec.Name)
		d.logf("Installed %s", rec.Name)
	}

	report.Elapsed = time.Since(start)

	if report.Ok() {
		d.trackComplete(progress.StatusCompleted, fmt.Sprintf("Installed %d packages", len(report.Installed)))
	} else {
		d.trackComplete(progress.StatusFailed, fmt.Sprintf("%d of %d packages failed", len(report.Failed), len(records)))
	}

	d.record(opts, report)
	return report, nil
}

// installOne installs a single catalog entry, hooks included.
func (d *Driver) installOne(ctx context.Context, rec *catalog.PackageRecord, opts Options) error {
	mgr, cask, err := d.resolveManager(rec.InstallType)
	if err != nil {
		return err
	}

	if err := d.runHook(ctx, rec.PreInstall); err != nil {
		return fmt.Errorf("pre-install hook failed: %w", err)
	}

	installOpts := manager.InstallOpts{
		AutoConfirm: opts.AutoConfirm,
		DryRun:      opts.DryRun,
		Cask:        cask,
	}

	onRetry := func(attempt int, err error, wait time.Duration) {
		d.logf("Attempt %d for %s failed: %v. Retrying in %s...", attempt, rec.Name, err, wait)
	}
	err = retry(ctx, d.retryCfg, onRetry, func() error {
		return mgr.Install(ctx, []string{rec.Package}, installOpts)
	})
	if err != nil {
		return err
	}

	if err := d.runHook(ctx, rec.PostInstall); err != nil {
		return fmt.Errorf("post-install hook failed: %w", err)
	}
	return nil
}

// record writes the run into the history log.
func (d *Driver) record(opts Options, report *Report) {
	if d.history == nil || opts.DryRun {
		return
	}

	packages := append([]string{}, report.Installed...)
	for _, f := range report.Failed {
		packages = append(packages, f.Package)
	}

	entry := history.NewEntry(history.OpInstall, "catalog", packages)
	entry.SnapshotID = report.SnapshotID
	if report.Ok() {
		entry.MarkSuccess(report.Elapsed)
	} else {
		entry.MarkFailed(fmt.Errorf("%d packages failed", len(report.Failed)))
	}
	if err := d.history.Record(entry); err != nil {
		d.logf("Failed to record history: %v", err)
	}
}

func (d *Driver) trackInit(total int) {
	if d.tracker != nil {
		_ = d.tracker.Init("install", total) //nolint:errcheck
	}
}

func (d *Driver) trackUpdate(percent int, current, message string) {
	if d.tracker != nil {
		_ = d.tracker.Update(percent, current, message) //nolint:errcheck
	}
}

func (d *Driver) trackInstalled(name string) {
	if d.tracker != nil {
		_ = d.tracker.PackageInstalled(name) //nolint:errcheck
	}
}

func (d *Driver) trackFailed(name, reason string) {
	if d.tracker != nil {
		_ = d.tracker.PackageFailed(name, reason) //nolint:errcheck
	}
}

func (d *Driver) trackComplete(status, message string) {
	if d.tracker != nil {
		_ = d.tracker.Complete(status, message) //nolint:errcheck
	}
}
