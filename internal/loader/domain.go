package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/internal/partition"
	"github.com/vvka-141/dwload/internal/storage"
	"github.com/vvka-141/dwload/pkg/dwload"
)

const rollbackTimeout = 30 * time.Second

// Recorder observes table and domain outcomes. Implemented by the metrics package.
type Recorder interface {
	TableLoaded(domain, table string, rows int64, d time.Duration)
	DomainFinished(domain string, state State, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) TableLoaded(string, string, int64, time.Duration) {}
func (noopRecorder) DomainFinished(string, State, time.Duration)      {}

// DomainLoader replaces the contents of one domain's tables.
type DomainLoader struct {
	domain   catalog.Domain
	cfg      dwload.LoadConfig
	fsys     storage.FS
	root     string
	open     dwload.StoreOpener
	logger   dwload.Logger
	recorder Recorder
	tables   *TableLoader
}

// NewDomainLoader creates a loader for domain. root is the data root inside fsys.
// open is not called in dry-run mode and may then be nil. recorder may be nil.
func NewDomainLoader(
	domain catalog.Domain,
	cfg dwload.LoadConfig,
	fsys storage.FS,
	root string,
	open dwload.StoreOpener,
	logger dwload.Logger,
	recorder Recorder,
) *DomainLoader {
	if fsys == nil {
		panic("fsys cannot be nil - programming error")
	}
	if logger == nil {
		panic("logger cannot be nil - programming error")
	}
	if open == nil && !cfg.DryRun {
		panic("store opener cannot be nil - programming error")
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &DomainLoader{
		domain:   domain,
		cfg:      cfg,
		fsys:     fsys,
		root:     root,
		open:     open,
		logger:   logger,
		recorder: recorder,
		tables:   NewTableLoader(fsys, cfg.Schema),
	}
}

// TruncateSQL returns the single statement emptying every table the domain owns,
// dependents first.
func TruncateSQL(schema string, domain catalog.Domain) string {
	order := domain.TruncateOrder()
	names := make([]string, len(order))
	for i, t := range order {
		names[i] = catalog.Qualified(schema, t.Name)
	}
	return fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(names, ", "))
}

// Load runs the domain's transaction to COMMIT or ROLLBACK, or ends in FAILED
// when the transaction never began.
// Failures before the transaction begins (partition resolution, connecting)
// are returned as-is; failures inside it are wrapped in *dwload.RollbackError.
func (d *DomainLoader) Load(ctx context.Context) (*LoadReport, error) {
	start := time.Now()
	report := &LoadReport{Domain: d.domain.Name, RunID: d.cfg.RunID, DryRun: d.cfg.DryRun, State: StateStart}

	err := d.load(ctx, report)

	report.Duration = time.Since(start)
	if err != nil {
		report.FailedIn = report.State
		report.State = StateRollback
		if report.FailedIn == StateStart {
			report.State = StateFailed
		}
	} else {
		d.logger.Info("%s: %d rows into %d tables in %s", d.domain.Name, report.TotalRows(), len(report.Tables),
			report.Duration.Round(time.Millisecond))
	}
	d.recorder.DomainFinished(d.domain.Name, report.State, report.Duration)
	return report, err
}

func (d *DomainLoader) load(ctx context.Context, report *LoadReport) error {
	factDir := d.root
	if d.cfg.Mode == dwload.ModePartitioned && len(d.domain.Facts) > 0 {
		resolver := partition.NewResolver(d.fsys, d.fsys.Join(d.root, d.cfg.PartitionDir))
		p, err := resolver.Resolve(ctx, d.cfg.PartitionID)
		if err != nil {
			return err
		}
		factDir = p.Path
		report.Partition = p.ID
	}

	d.logger.Info("Loading %s (partition %s)", d.domain.Name, partitionLabel(report.Partition, d.cfg.Mode))

	store, err := d.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	tx, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		d.rollback(ctx, tx)
	}()

	fail := func(cause error) error {
		finished = true
		state := report.State
		if rbErr := d.rollback(ctx, tx); rbErr != nil {
			cause = errors.Join(cause, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return &dwload.RollbackError{Domain: d.domain.Name, State: string(state), Err: cause}
	}

	report.State = StateTruncate
	d.logger.Verbose("Truncating %d table(s)", len(d.domain.Tables()))
	if _, err := tx.Exec(ctx, TruncateSQL(d.cfg.Schema, d.domain)); err != nil {
		return fail(fmt.Errorf("truncate failed: %w", err))
	}

	report.State = StateLoadDimensions
	for _, t := range d.domain.Dimensions {
		if err := d.loadTable(ctx, tx, t, d.fsys.Join(d.root, t.FileName()), report); err != nil {
			return fail(err)
		}
	}

	report.State = StateLoadFacts
	for _, t := range d.domain.Facts {
		if err := d.loadTable(ctx, tx, t, d.fsys.Join(factDir, t.FileName()), report); err != nil {
			return fail(err)
		}
	}

	finished = true
	if err := tx.Commit(ctx); err != nil {
		return &dwload.RollbackError{Domain: d.domain.Name, State: string(StateCommit), Err: fmt.Errorf("commit failed: %w", err)}
	}
	report.State = StateCommit
	return nil
}

func (d *DomainLoader) openStore(ctx context.Context) (dwload.Store, error) {
	if d.cfg.DryRun {
		d.logger.Info("Dry run: extracts are read and counted, the database is not touched")
		return NewDryRunStore(), nil
	}
	return d.open(ctx)
}

func (d *DomainLoader) loadTable(ctx context.Context, tx dwload.Tx, t catalog.Table, source string, report *LoadReport) error {
	start := time.Now()
	res, err := d.tables.Load(ctx, tx, t, source)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	report.Tables = append(report.Tables, TableReport{
		Table:    t.Name,
		Kind:     string(t.Kind),
		Source:   source,
		Rows:     res.Rows,
		Bytes:    res.Bytes,
		Checksum: res.Checksum,
		Duration: elapsed,
	})
	d.recorder.TableLoaded(d.domain.Name, t.Name, res.Rows, elapsed)
	d.logger.Info("  %-16s %10d rows  %s", t.Name, res.Rows, elapsed.Round(time.Millisecond))
	d.logger.Verbose("  %-16s %s (%d bytes, sha256 %s)", t.Name, source, res.Bytes, res.Checksum)
	return nil
}

func (d *DomainLoader) rollback(ctx context.Context, tx dwload.Tx) error {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := tx.Rollback(rbCtx); err != nil {
		d.logger.Error("%s: rollback failed: %v", d.domain.Name, err)
		return err
	}
	d.logger.Verbose("%s: transaction rolled back", d.domain.Name)
	return nil
}

func partitionLabel(id string, mode dwload.Mode) string {
	switch {
	case mode == dwload.ModeFlat:
		return "flat"
	case id == "":
		return "none"
	default:
		return id
	}
}
