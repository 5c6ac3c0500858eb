package graph

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// Runner executes a single node's action. Implementations dispatch on
// node.Action; any returned error is fatal for the node and, by extension,
// the remaining schedule.
type Runner interface {
	Run(ctx context.Context, node *Node) error
}

// NodeError pairs a failed node's target with its error.
type NodeError struct {
	Target string
	Action Action
	Err    error
}

func (e NodeError) Error() string {
	return "node " + e.Target + " (" + e.Action.String() + "): " + e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e NodeError) Unwrap() error { return e.Err }

// Result summarizes one graph execution.
type Result struct {
	BuildID  uuid.UUID
	Executed []string
	Skipped  []string
	Failed   []NodeError
	Duration time.Duration
}

// Executor runs a graph level by level. Nodes inside a level have no path
// between them and run concurrently on a bounded worker pool; a level only
// starts once the previous one completed, which is how the dependency order
// is honoured. Staleness is probed when a node is scheduled, after all of its
// dependencies ran, so a freshly rewritten dependency target invalidates its
// dependents naturally.
type Executor struct {
	graph   *Graph
	runner  Runner
	workers int
	logger  interfaces.Logger
}

// ExecutorOption mutates Executor construction.
type ExecutorOption func(*Executor)

// WithWorkers bounds node parallelism. Values below one select a single worker.
func WithWorkers(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithExecutorLogger attaches a logger. Defaults to no-op.
func WithExecutorLogger(logger interfaces.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor constructs an executor for the given graph and runner.
func NewExecutor(graph *Graph, runner Runner, opts ...ExecutorOption) *Executor {
	e := &Executor{
		graph:   graph,
		runner:  runner,
		workers: 1,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every stale node in dependency order. The first failure stops
// scheduling after the current level drains: completed outputs stay in place,
// but the build as a whole reports failed and no success set is published.
func (e *Executor) Execute(ctx context.Context) (*Result, error) {
	started := time.Now()
	result := &Result{BuildID: uuid.New()}

	levels, err := e.graph.Levels()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			break
		}

		jobs := make(chan *Node)
		var wg sync.WaitGroup
		for i := 0; i < e.workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for node := range jobs {
					e.runNode(ctx, node, result, &mu, cancel)
				}
			}()
		}
		for _, node := range level {
			select {
			case <-ctx.Done():
			case jobs <- node:
			}
		}
		close(jobs)
		wg.Wait()

		mu.Lock()
		failed := len(result.Failed) > 0
		mu.Unlock()
		if failed {
			break
		}
	}

	sort.Strings(result.Executed)
	sort.Strings(result.Skipped)
	result.Duration = time.Since(started)

	if len(result.Failed) > 0 {
		errs := make([]error, len(result.Failed))
		for i, failure := range result.Failed {
			errs[i] = failure
		}
		return result, errors.Join(errs...)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Executor) runNode(ctx context.Context, node *Node, result *Result, mu *sync.Mutex, cancel context.CancelFunc) {
	if err := ctx.Err(); err != nil {
		return
	}

	if !IsStale(node) {
		mu.Lock()
		result.Skipped = append(result.Skipped, node.Target)
		mu.Unlock()
		logging.WithNodeContext(e.logger, node.Target).Trace("graph.node.fresh")
		return
	}

	logger := logging.WithNodeContext(e.logger, node.Target)
	logger.Debug("graph.node.start", "action", node.Action.String())
	if err := e.runner.Run(ctx, node); err != nil {
		mu.Lock()
		result.Failed = append(result.Failed, NodeError{Target: node.Target, Action: node.Action, Err: err})
		mu.Unlock()
		logger.Error("graph.node.failed", "error", err)
		cancel()
		return
	}

	mu.Lock()
	result.Executed = append(result.Executed, node.Target)
	mu.Unlock()
	logger.Debug("graph.node.complete")
}
