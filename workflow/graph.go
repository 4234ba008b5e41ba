package workflow

import (
	"context"
	"fmt"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/logging"
)

// End is the sentinel node name terminating graph execution.
const End = "end"

// NodeFunc is a pure state-transforming step. Nodes never mutate the passed
// state; they describe their changes as a Delta merged by the executor.
type NodeFunc func(ctx context.Context, state core.ConversationState) (Delta, error)

// ConditionFunc selects the next node name after a conditional edge. It must
// return a registered node name or End.
type ConditionFunc func(state core.ConversationState) string

// Delta is the set of state changes a node may request. Reducers apply in a
// fixed order: KeepLast, then Append, then Summary, then ResetUsage, then
// Usage.
type Delta struct {
	// KeepLast prunes working memory to the newest n messages before any
	// append. KeepLast of 0 combined with Append replaces the message list.
	KeepLast *int
	// Append adds messages in order to the end of the list.
	Append []core.Message
	// Summary replaces the conversation summary.
	Summary *string
	// ResetUsage clears accumulated token counts before Usage merges, scoping
	// the counts to the current run instead of the checkpoint's lifetime.
	ResetUsage bool
	// Usage merges token counts additively into the state.
	Usage map[string]int
}

// KeepLast returns a pointer suitable for Delta.KeepLast.
func KeepLast(n int) *int { return &n }

func apply(state core.ConversationState, delta Delta) core.ConversationState {
	if delta.KeepLast != nil {
		if n := *delta.KeepLast; n < len(state.Messages) {
			kept := make([]core.Message, n)
			copy(kept, state.Messages[len(state.Messages)-n:])
			state.Messages = kept
		}
	}
	if len(delta.Append) > 0 {
		state.Messages = append(state.Messages, delta.Append...)
	}
	if delta.Summary != nil {
		state.Summary = *delta.Summary
	}
	if delta.ResetUsage {
		state.TokensUsed = nil
	}
	if len(delta.Usage) > 0 {
		if state.TokensUsed == nil {
			state.TokensUsed = make(map[string]int, len(delta.Usage))
		}
		for k, v := range delta.Usage {
			state.TokensUsed[k] += v
		}
	}
	return state
}

// Graph is a mutable workflow definition: named nodes connected by plain and
// conditional edges. Compile validates the definition and produces an
// executable Workflow.
type Graph struct {
	nodes      map[string]NodeFunc
	edges      map[string]string
	conditions map[string]ConditionFunc
	entry      string
}

// NewGraph creates an empty workflow graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]NodeFunc),
		edges:      make(map[string]string),
		conditions: make(map[string]ConditionFunc),
	}
}

// AddNode registers a named node.
func (g *Graph) AddNode(name string, fn NodeFunc) {
	g.nodes[name] = fn
}

// AddEdge connects from to to unconditionally.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = to
}

// AddConditionalEdge makes the successor of from depend on the state after
// the node ran.
func (g *Graph) AddConditionalEdge(from string, cond ConditionFunc) {
	g.conditions[from] = cond
}

// SetEntryPoint selects the first node executed per run.
func (g *Graph) SetEntryPoint(name string) {
	g.entry = name
}

// CompileOptions configure workflow compilation.
type CompileOptions struct {
	// Checkpointer keeps per-thread working state between runs. Defaults to
	// an in-memory saver.
	Checkpointer Checkpointer
	// MaxSteps bounds a single run as a guard against edge cycles.
	MaxSteps int
	// Logger receives node-level execution logs.
	Logger logging.Logger
}

// Compile validates the graph and returns an executable workflow.
func (g *Graph) Compile(optFns ...func(o *CompileOptions)) (*Workflow, error) {
	opts := CompileOptions{MaxSteps: 25, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Checkpointer == nil {
		opts.Checkpointer = NewMemorySaver()
	}

	if g.entry == "" {
		return nil, fmt.Errorf("no entry point set")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("entry point references unknown node: %s", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("edge from unknown node: %s", from)
		}
		if _, ok := g.nodes[to]; !ok && to != End {
			return nil, fmt.Errorf("edge to unknown node: %s", to)
		}
		if _, ok := g.conditions[from]; ok {
			return nil, fmt.Errorf("node %s has both a plain and a conditional edge", from)
		}
	}
	for from := range g.conditions {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("conditional edge from unknown node: %s", from)
		}
	}

	return &Workflow{
		graph:        g,
		checkpointer: opts.Checkpointer,
		maxSteps:     opts.MaxSteps,
		logger:       opts.Logger,
	}, nil
}

// Workflow is a compiled, immutable graph ready for execution. It is safe
// for concurrent invocation across threads; within one invocation nodes run
// strictly sequentially.
type Workflow struct {
	graph        *Graph
	checkpointer Checkpointer
	maxSteps     int
	logger       logging.Logger
}

// Invoke runs the graph for the given thread. The input delta is merged into
// the thread's checkpointed state before the entry node executes; the final
// state is checkpointed and returned.
func (w *Workflow) Invoke(ctx context.Context, threadID string, input Delta) (core.ConversationState, error) {
	state, ok := w.checkpointer.Load(threadID)
	if !ok {
		state = core.NewConversationState(threadID)
	}
	state = apply(state, input)

	current := w.graph.entry
	for steps := 0; current != End; steps++ {
		if steps >= w.maxSteps {
			return state, fmt.Errorf("workflow exceeded %d steps at node %s", w.maxSteps, current)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := w.graph.nodes[current]
		if !ok {
			return state, fmt.Errorf("unknown node: %s", current)
		}

		delta, err := node(ctx, state)
		if err != nil {
			return state, fmt.Errorf("node %s: %w", current, err)
		}
		state = apply(state, delta)

		w.logger.Debug("workflow node executed", "node", current, "thread_id", threadID, "message_count", len(state.Messages))

		if cond, ok := w.graph.conditions[current]; ok {
			current = cond(state)
		} else if next, ok := w.graph.edges[current]; ok {
			current = next
		} else {
			current = End
		}
	}

	w.checkpointer.Save(threadID, state)

	return state, nil
}
