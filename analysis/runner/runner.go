// Package runner drives the analyses over whole programs. Procedures are
// independent, so they are analyzed in parallel by a bounded worker pool;
// results are merged into a read-only collection keyed by procedure name.
//
// A run is cancellable between procedure boundaries: procedures finished
// before cancellation keep their results, the rest are marked not analyzed.
// Per-procedure failures never abort the run.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/analysis/livevars"
	"github.com/spartools/spar/analysis/pointsto"
	"github.com/spartools/spar/analysis/reachdefs"
	"github.com/spartools/spar/ir"
)

var log = logrus.StandardLogger()

// Kind selects one of the available analyses.
type Kind string

const (
	KindLive     Kind = "live"
	KindReaching Kind = "reaching"
	KindPointer  Kind = "pointer"
)

// AllKinds lists every available analysis.
var AllKinds = []Kind{KindLive, KindReaching, KindPointer}

// ParseKind converts a CLI/config analysis name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLive, KindReaching, KindPointer:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown analysis %q (choose from live, reaching, pointer)", s)
}

// Status describes the outcome of one procedure's analysis.
type Status int

const (
	// StatusDone marks a fully analyzed procedure.
	StatusDone Status = iota
	// StatusFailed marks a procedure whose analysis aborted (malformed CFG,
	// broken analysis definition). Err carries the cause.
	StatusFailed
	// StatusNotAnalyzed marks a procedure skipped because the run was
	// cancelled before it started.
	StatusNotAnalyzed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "not analyzed"
	}
}

// ProcedureResult carries the facts computed for one procedure. Analysis
// fields are nil when the corresponding analysis was not requested or the
// procedure was not analyzed.
type ProcedureResult struct {
	Procedure string
	Status    Status
	Err       error

	Graph    *cfg.Graph
	Live     *livevars.LiveVars
	Reaching *reachdefs.ReachingDefs
	Pointer  *pointsto.Result
}

// Options configures a run.
type Options struct {
	// Analyses to run per procedure. Empty means all.
	Analyses []Kind

	// Parallelism bounds the worker pool. Zero or negative means
	// GOMAXPROCS.
	Parallelism int

	// OnProcedure, when set, is invoked serially after each procedure
	// completes (or is skipped). Useful for progress reporting and tests.
	OnProcedure func(*ProcedureResult)
}

// RunResult is the read-only outcome of a whole-program run.
type RunResult struct {
	order   []string
	results map[string]*ProcedureResult
}

// Procedures returns the procedure names in program order.
func (rr *RunResult) Procedures() []string {
	return rr.order
}

// Result looks up one procedure's result by name.
func (rr *RunResult) Result(name string) (*ProcedureResult, bool) {
	res, ok := rr.results[name]
	return res, ok
}

// Results returns all procedure results in program order.
func (rr *RunResult) Results() []*ProcedureResult {
	all := make([]*ProcedureResult, 0, len(rr.order))
	for _, name := range rr.order {
		all = append(all, rr.results[name])
	}
	return all
}

// Run analyzes every procedure of the program. It always returns a result
// for every procedure; consult each ProcedureResult's Status.
func Run(ctx context.Context, prog *ir.Program, opts Options) *RunResult {
	kinds := opts.Analyses
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	par := opts.Parallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(0)
	}
	if par > len(prog.Procedures) {
		par = len(prog.Procedures)
	}

	results := make([]*ProcedureResult, len(prog.Procedures))
	indices := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for w := 0; w < par; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				proc := &prog.Procedures[idx]
				if ctx.Err() != nil {
					results[idx] = &ProcedureResult{Procedure: proc.Name, Status: StatusNotAnalyzed}
					log.Debugf("skipping procedure %s: run cancelled", proc.Name)
				} else {
					results[idx] = analyzeProcedure(proc, kinds)
				}
				if opts.OnProcedure != nil {
					mu.Lock()
					opts.OnProcedure(results[idx])
					mu.Unlock()
				}
			}
		}()
	}
	for i := range prog.Procedures {
		indices <- i
	}
	close(indices)
	wg.Wait()

	rr := &RunResult{results: make(map[string]*ProcedureResult, len(results))}
	for _, res := range results {
		rr.order = append(rr.order, res.Procedure)
		rr.results[res.Procedure] = res
	}
	return rr
}

// analyzeProcedure runs the requested analyses over one procedure. A CFG
// construction failure fails the whole procedure; analysis failures fail it
// too but keep the graph for reporting.
func analyzeProcedure(proc *ir.Procedure, kinds []Kind) *ProcedureResult {
	res := &ProcedureResult{Procedure: proc.Name, Status: StatusDone}
	start := time.Now()

	g, err := cfg.Build(proc)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		log.Warnf("procedure %s: %v", proc.Name, err)
		return res
	}
	res.Graph = g

	for _, kind := range kinds {
		switch kind {
		case KindLive:
			res.Live, err = livevars.Analyze(g)
		case KindReaching:
			res.Reaching, err = reachdefs.Analyze(g)
		case KindPointer:
			res.Pointer = pointsto.Analyze(proc)
		}
		if err != nil {
			res.Status = StatusFailed
			res.Err = fmt.Errorf("%s: %w", kind, err)
			log.Warnf("procedure %s: %v", proc.Name, res.Err)
			return res
		}
	}

	log.Debugf("procedure %s analyzed in %s", proc.Name, time.Since(start))
	return res
}
