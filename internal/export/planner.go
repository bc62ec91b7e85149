package export

import (
	"os"

	"github.com/looking-glass-station/shapr3d-backup/internal/catalog"
)

// Action is the planned disposition of one (project, revision) pair.
type Action int

const (
	// ActionExport materializes the target files.
	ActionExport Action = iota
	// ActionSkip leaves an already-exported target untouched.
	ActionSkip
)

// String returns the action name for plan output.
func (a Action) String() string {
	if a == ActionSkip {
		return "skip"
	}
	return "export"
}

// PlanItem is one unit of work with its decided action and resolved
// target paths.
type PlanItem struct {
	Project  catalog.Project
	Revision catalog.Revision

	PackagePath   string
	ThumbnailPath string

	Action Action
}

// Options controls revision selection during planning.
type Options struct {
	// AddRevision exports every historical revision instead of only the
	// latest one.
	AddRevision bool
}

// Plan resolves projects into an ordered work list. Existence of the
// package file at its target path is the whole export record: a target
// present on disk right now is planned as a skip. The plan is computed
// once, before any write happens, and stays fixed for the run: the
// executor never re-checks the filesystem, so outcomes are decided up
// front and auditable before the first byte is written.
func Plan(projects []catalog.Project, namer Namer, opts Options) []PlanItem {
	var plan []PlanItem
	for _, p := range projects {
		revs := p.Revisions
		if !opts.AddRevision {
			revs = revs[len(revs)-1:]
		}
		for _, rev := range revs {
			item := PlanItem{
				Project:       p,
				Revision:      rev,
				PackagePath:   namer.PackagePath(p, rev, opts.AddRevision),
				ThumbnailPath: namer.ThumbnailPath(p),
				Action:        ActionExport,
			}
			if _, err := os.Stat(item.PackagePath); err == nil {
				item.Action = ActionSkip
			}
			plan = append(plan, item)
		}
	}
	return plan
}
