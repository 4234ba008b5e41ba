package workflow

import (
	"context"
	"fmt"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/logging"
	"github.com/hupe1980/chatmesh/model"
)

// Node and branch names of the chat workflow graph.
const (
	nodeReconcile = "reconcile"
	nodeGenerate  = "generate"
	nodeSummarize = "summarize"
)

// DefaultSummarizeThreshold is the message count above which the chat
// workflow compresses history. Deployments have run with values as low as 2;
// treat the threshold as configuration, not a constant.
const DefaultSummarizeThreshold = 6

// keepAfterSummary bounds working memory after compression.
const keepAfterSummary = 2

const personaInstruction = "You are a helpful assistant. Answer the user's questions accurately and concisely."

// ChatOptions configure the chat workflow.
type ChatOptions struct {
	// SummarizeThreshold triggers history compression once the working
	// message count exceeds it.
	SummarizeThreshold int
	// Checkpointer overrides the default in-memory checkpointer.
	Checkpointer Checkpointer
	// Logger receives workflow execution logs.
	Logger logging.Logger
}

// chatWorkflow holds the collaborators the chat nodes close over.
type chatWorkflow struct {
	model     model.Model
	store     core.ConversationStore
	threshold int
	logger    logging.Logger
}

// NewChatWorkflow wires the bounded-memory chat graph over a model and a
// conversation store:
//
//	reconcile -> generate -> decide -> {summarize -> end | end}
func NewChatWorkflow(m model.Model, store core.ConversationStore, optFns ...func(o *ChatOptions)) (*Workflow, error) {
	opts := ChatOptions{SummarizeThreshold: DefaultSummarizeThreshold, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if m == nil {
		return nil, fmt.Errorf("model must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if opts.SummarizeThreshold < 1 {
		return nil, fmt.Errorf("summarize threshold must be positive, got %d", opts.SummarizeThreshold)
	}

	cw := &chatWorkflow{model: m, store: store, threshold: opts.SummarizeThreshold, logger: opts.Logger}

	g := NewGraph()
	g.AddNode(nodeReconcile, cw.reconcile)
	g.AddNode(nodeGenerate, cw.generate)
	g.AddNode(nodeSummarize, cw.summarize)
	g.SetEntryPoint(nodeReconcile)
	g.AddEdge(nodeReconcile, nodeGenerate)
	g.AddConditionalEdge(nodeGenerate, cw.decide)
	g.AddEdge(nodeSummarize, End)

	return g.Compile(func(o *CompileOptions) {
		o.Checkpointer = opts.Checkpointer
		o.Logger = opts.Logger
	})
}

// reconcile rebuilds working memory from the newest persisted message pair.
// It is a pure function of (last persisted pair, new human message): the
// delta replaces every transient message with the reconstructed history plus
// the incoming turn, so identical inputs always yield identical state. Token
// counts are reset here, so the usage accumulated by the end of a run covers
// exactly that run.
func (w *chatWorkflow) reconcile(ctx context.Context, state core.ConversationState) (Delta, error) {
	pairs, err := w.store.LoadConversation(ctx, state.ThreadID, 1)
	if err != nil {
		return Delta{}, fmt.Errorf("load conversation %s: %w", state.ThreadID, err)
	}

	delta := Delta{KeepLast: KeepLast(0), ResetUsage: true}

	if len(pairs) > 0 {
		last := pairs[len(pairs)-1]
		delta.Append = append(delta.Append, core.NewHumanMessage(last.UserMessage))
		// A failed turn persists no reply; an empty assistant message must not
		// be replayed to the provider.
		if last.AIMessage != "" {
			delta.Append = append(delta.Append, core.NewAssistantMessage(last.AIMessage))
		}
		if last.Summary != "" {
			delta.Summary = &last.Summary
		}
	}

	// The incoming human message is the newest transient message; everything
	// older is a stale checkpoint leftover and gets dropped by KeepLast(0).
	if len(state.Messages) > 0 {
		delta.Append = append(delta.Append, state.Messages[len(state.Messages)-1])
	}

	w.logger.Debug("reconciled conversation state", "thread_id", state.ThreadID, "persisted_pairs", len(pairs))

	return delta, nil
}

// generate builds the system instruction and calls the model with the full
// working memory. Provider failures propagate to the caller.
func (w *chatWorkflow) generate(ctx context.Context, state core.ConversationState) (Delta, error) {
	instruction := personaInstruction
	if state.Summary != "" {
		instruction += "\n\nSummary of conversation earlier: " + state.Summary
	}

	messages := make([]core.Message, 0, len(state.Messages)+1)
	messages = append(messages, core.NewSystemMessage(instruction))
	messages = append(messages, state.Messages...)

	resp, err := w.model.GenerateResponse(ctx, messages)
	if err != nil {
		return Delta{}, fmt.Errorf("generate response: %w", err)
	}

	w.logger.Debug("model response received", "thread_id", state.ThreadID, "model", w.model.Info().Name)

	return Delta{
		Append: []core.Message{resp.Message},
		Usage:  resp.Usage.Map(),
	}, nil
}

// decide routes to summarization once working memory exceeds the threshold.
func (w *chatWorkflow) decide(state core.ConversationState) string {
	next := End
	if len(state.Messages) > w.threshold {
		next = nodeSummarize
	}
	w.logger.Debug("conversation flow check", "thread_id", state.ThreadID, "message_count", len(state.Messages), "decision", next)
	return next
}

// summarize compresses history into the cumulative summary and prunes
// working memory to the newest two messages. An existing summary is extended,
// never replaced from scratch.
func (w *chatWorkflow) summarize(ctx context.Context, state core.ConversationState) (Delta, error) {
	var instruction string
	if state.Summary != "" {
		instruction = fmt.Sprintf(
			"This is summary of the conversation to date: %s\n\nExtend the summary by taking into account the new messages above:",
			state.Summary,
		)
	} else {
		instruction = "Create a summary of the conversation above:"
	}

	messages := make([]core.Message, 0, len(state.Messages)+1)
	messages = append(messages, state.Messages...)
	messages = append(messages, core.NewHumanMessage(instruction))

	resp, err := w.model.GenerateResponse(ctx, messages)
	if err != nil {
		return Delta{}, fmt.Errorf("summarize conversation: %w", err)
	}

	pruned := len(state.Messages) - keepAfterSummary
	if pruned < 0 {
		pruned = 0
	}
	w.logger.Info("conversation summarized", "thread_id", state.ThreadID, "pruned_messages", pruned, "summary_length", len(resp.Message.Content))

	return Delta{
		KeepLast: KeepLast(keepAfterSummary),
		Summary:  &resp.Message.Content,
		Usage:    resp.Usage.Map(),
	}, nil
}
