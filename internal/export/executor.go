package export

import (
	"context"
	stderrors "errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/looking-glass-station/shapr3d-backup/internal/blob"
	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
	"github.com/looking-glass-station/shapr3d-backup/internal/util"
)

// Outcome is the result of executing one plan item.
type Outcome int

const (
	// OutcomeExported means the package (and possibly thumbnail) was written.
	OutcomeExported Outcome = iota
	// OutcomeSkipped means the target already existed at plan time.
	OutcomeSkipped
	// OutcomeFailed means the package could not be written.
	OutcomeFailed
)

// String returns the outcome name for reporting.
func (o Outcome) String() string {
	switch o {
	case OutcomeExported:
		return "exported"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result is the executed disposition of one plan item.
type Result struct {
	Item    PlanItem
	Outcome Outcome

	// Err is set for failed items.
	Err error

	// Warning carries a non-fatal problem, currently only thumbnail
	// trouble; the item still counts as exported.
	Warning error
}

// Summary aggregates a run's results. RunID tags the run's summary
// output so logs from repeated or overlapping invocations can be told
// apart.
type Summary struct {
	RunID    string
	Exported int
	Skipped  int
	Failed   int
}

// Executor materializes plan items. The zero value is unusable; set at
// least Store.
type Executor struct {
	Store *blob.Store

	// Jobs bounds concurrent item execution; values below 2 mean
	// sequential. Items never share target paths (the namer is
	// injective), so no cross-item locking is needed.
	Jobs int

	// Report, when set, is called once per finished item. Calls may
	// come from concurrent goroutines when Jobs > 1.
	Report func(Result)
}

// Run executes the plan and returns a summary. Item failures are
// isolated: one broken project never stops the rest of the backup. The
// returned error is non-nil only when ctx was cancelled; committed
// targets are never harmed by an interrupt, since every write goes
// through a temp file and an atomic rename.
func (e *Executor) Run(ctx context.Context, plan []PlanItem) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}

	var mu sync.Mutex
	record := func(res Result) {
		mu.Lock()
		switch res.Outcome {
		case OutcomeExported:
			summary.Exported++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
		}
		mu.Unlock()
		if e.Report != nil {
			e.Report(res)
		}
	}

	if e.Jobs > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.Jobs)
		for _, item := range plan {
			if gctx.Err() != nil {
				break
			}
			item := item
			g.Go(func() error {
				record(e.Execute(item))
				return nil
			})
		}
		_ = g.Wait()
		return summary, ctx.Err()
	}

	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		record(e.Execute(item))
	}
	return summary, nil
}

// Execute materializes a single plan item. Skip items are untouched:
// the plan's decision is final even if the filesystem changed since
// planning.
func (e *Executor) Execute(item PlanItem) Result {
	if item.Action == ActionSkip {
		return Result{Item: item, Outcome: OutcomeSkipped}
	}

	if err := e.writePackage(item); err != nil {
		return Result{Item: item, Outcome: OutcomeFailed, Err: err}
	}

	res := Result{Item: item, Outcome: OutcomeExported}
	// The package is the primary artifact; thumbnail trouble is worth a
	// warning but never fails the item.
	if err := e.writeThumbnail(item); err != nil {
		res.Warning = err
	}
	return res
}

func (e *Executor) writePackage(item PlanItem) error {
	ws, err := e.Store.OpenPackage(item.Revision)
	if err != nil {
		return err
	}
	defer ws.Close()

	err = util.AtomicWrite(item.PackagePath, 0644, func(w io.Writer) error {
		return WritePackage(w, ws, item.Project.ID, item.Revision.ID)
	})
	if err != nil {
		return errors.ErrWriteFailed(item.PackagePath, err)
	}
	return nil
}

func (e *Executor) writeThumbnail(item PlanItem) error {
	rc, err := e.Store.OpenThumbnail(item.Revision)
	if stderrors.Is(err, blob.ErrNoThumbnail) {
		return nil
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	frame, ok := blob.ExtractJPEG(data)
	if !ok {
		return nil
	}

	if err := util.AtomicWriteFile(item.ThumbnailPath, frame, 0644); err != nil {
		return errors.ErrWriteFailed(item.ThumbnailPath, err)
	}
	return nil
}
