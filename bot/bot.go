package bot

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/logging"
	"github.com/hupe1980/chatmesh/model"
	"github.com/hupe1980/chatmesh/workflow"
)

// apologyResponse is the fixed fallback returned when a turn cannot produce
// a reply. The user-facing call always completes; the failure is persisted
// and logged instead of propagated.
const apologyResponse = "I apologize, but I couldn't generate a response."

// Bot is an immutable conversational agent composed of a model, a
// conversation store, a compiled workflow and a temperature. It is safe for
// concurrent use; turns on the same thread are serialized.
type Bot struct {
	model       model.Model
	storage     core.ConversationStore
	workflow    *workflow.Workflow
	temperature float64
	logger      logging.Logger
	threads     *threadLocks
}

// Model returns the bot's model.
func (b *Bot) Model() model.Model { return b.model }

// Storage returns the bot's conversation store.
func (b *Bot) Storage() core.ConversationStore { return b.storage }

// Temperature returns the agent temperature.
func (b *Bot) Temperature() float64 { return b.temperature }

// Chat processes one conversational turn and returns the assistant reply, or
// the fixed apology string when generation fails. Exactly one message pair
// is persisted per call, with status failed and the error message recorded
// on the failure path. Persistence is best-effort once a reply exists: a
// missing conversation or storage error is logged, never surfaced.
func (b *Bot) Chat(ctx context.Context, message, threadID string) string {
	unlock := b.threads.lock(threadID)
	defer unlock()

	start := time.Now()

	pair := core.MessagePair{
		UserMessage:  message,
		ModelVersion: b.model.Info().Name,
		CreatedAt:    start,
	}

	state, err := b.workflow.Invoke(ctx, threadID, workflow.Delta{
		Append: []core.Message{core.NewHumanMessage(message)},
	})
	pair.ProcessingTime = time.Since(start).Seconds()

	if err != nil {
		b.logger.Error("model invocation failed", "thread_id", threadID, "error", err)
		pair.Status = core.StatusFailed
		pair.ErrorMessage = err.Error()
		b.persist(ctx, threadID, pair)
		return apologyResponse
	}

	reply, ok := state.LastAssistantMessage()
	if !ok {
		b.logger.Warn("no assistant response generated", "thread_id", threadID)
		pair.Status = core.StatusFailed
		pair.ErrorMessage = "no assistant response generated"
		b.persist(ctx, threadID, pair)
		return apologyResponse
	}

	pair.AIMessage = reply.Content
	pair.Summary = state.Summary
	pair.TokensUsed = state.TokensUsed
	pair.Status = core.StatusCompleted
	b.persist(ctx, threadID, pair)

	b.logger.Info("chat turn completed", "thread_id", threadID, "duration", time.Since(start), "message_count", len(state.Messages))

	return reply.Content
}

func (b *Bot) persist(ctx context.Context, threadID string, pair core.MessagePair) {
	saved, err := b.storage.SaveMessage(ctx, threadID, pair)
	if err != nil {
		b.logger.Error("failed to persist message pair", "thread_id", threadID, "error", err)
		return
	}
	if !saved {
		b.logger.Warn("conversation not found, message pair dropped", "thread_id", threadID)
	}
}

// threadLocks serializes turns per thread so two concurrent Chat calls on
// the same thread cannot reconcile from the same stale pair and branch the
// conversation. Thread ids are unbounded user data, so entries are
// refcounted and dropped once the last holder unlocks.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newThreadLocks() *threadLocks {
	return &threadLocks{locks: make(map[string]*threadLock)}
}

func (t *threadLocks) lock(threadID string) func() {
	t.mu.Lock()
	l, ok := t.locks[threadID]
	if !ok {
		l = &threadLock{}
		t.locks[threadID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, threadID)
		}
		t.mu.Unlock()
	}
}
