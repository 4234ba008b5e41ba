package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/chatmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_ReducerOrder(t *testing.T) {
	state := core.NewConversationState("t1")
	state.Messages = []core.Message{
		core.NewHumanMessage("one"),
		core.NewAssistantMessage("two"),
		core.NewHumanMessage("three"),
	}

	summary := "compressed"
	state = apply(state, Delta{
		KeepLast: KeepLast(2),
		Append:   []core.Message{core.NewHumanMessage("four")},
		Summary:  &summary,
		Usage:    map[string]int{"total_tokens": 5},
	})

	// Prune happens before append: the two survivors plus the new message.
	require.Len(t, state.Messages, 3)
	assert.Equal(t, "two", state.Messages[0].Content)
	assert.Equal(t, "three", state.Messages[1].Content)
	assert.Equal(t, "four", state.Messages[2].Content)
	assert.Equal(t, "compressed", state.Summary)
	assert.Equal(t, 5, state.TokensUsed["total_tokens"])

	state = apply(state, Delta{Usage: map[string]int{"total_tokens": 3}})
	assert.Equal(t, 8, state.TokensUsed["total_tokens"], "usage merges additively")
}

func TestApply_ResetUsageScopesCounts(t *testing.T) {
	state := core.NewConversationState("t1")
	state.TokensUsed = map[string]int{"total_tokens": 8, "prompt_tokens": 6}

	// Reset happens before the merge, so stale counts never leak into the
	// new total.
	state = apply(state, Delta{ResetUsage: true, Usage: map[string]int{"total_tokens": 5}})
	assert.Equal(t, map[string]int{"total_tokens": 5}, state.TokensUsed)

	state = apply(state, Delta{Usage: map[string]int{"total_tokens": 2}})
	assert.Equal(t, 7, state.TokensUsed["total_tokens"])
}

func TestApply_KeepLastZeroReplacesMessages(t *testing.T) {
	state := core.NewConversationState("t1")
	state.Messages = []core.Message{core.NewHumanMessage("stale")}

	fresh := core.NewHumanMessage("fresh")
	state = apply(state, Delta{KeepLast: KeepLast(0), Append: []core.Message{fresh}})

	require.Len(t, state.Messages, 1)
	assert.Equal(t, fresh.ID, state.Messages[0].ID)
}

func TestGraph_CompileValidation(t *testing.T) {
	noop := func(context.Context, core.ConversationState) (Delta, error) { return Delta{}, nil }

	t.Run("missing entry point", func(t *testing.T) {
		g := NewGraph()
		g.AddNode("a", noop)
		_, err := g.Compile()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry point")
	})

	t.Run("edge to unknown node", func(t *testing.T) {
		g := NewGraph()
		g.AddNode("a", noop)
		g.SetEntryPoint("a")
		g.AddEdge("a", "ghost")
		_, err := g.Compile()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("conflicting edges", func(t *testing.T) {
		g := NewGraph()
		g.AddNode("a", noop)
		g.AddNode("b", noop)
		g.SetEntryPoint("a")
		g.AddEdge("a", "b")
		g.AddConditionalEdge("a", func(core.ConversationState) string { return End })
		_, err := g.Compile()
		require.Error(t, err)
	})
}

func TestWorkflow_InvokeFollowsConditionalEdge(t *testing.T) {
	var visited []string
	record := func(name string, delta Delta) NodeFunc {
		return func(context.Context, core.ConversationState) (Delta, error) {
			visited = append(visited, name)
			return delta, nil
		}
	}

	g := NewGraph()
	g.AddNode("first", record("first", Delta{Append: []core.Message{core.NewHumanMessage("a")}}))
	g.AddNode("extra", record("extra", Delta{}))
	g.SetEntryPoint("first")
	g.AddConditionalEdge("first", func(s core.ConversationState) string {
		if len(s.Messages) > 1 {
			return "extra"
		}
		return End
	})
	g.AddEdge("extra", End)

	wf, err := g.Compile()
	require.NoError(t, err)

	_, err = wf.Invoke(context.Background(), "t1", Delta{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, visited, "single message must terminate")

	visited = nil
	_, err = wf.Invoke(context.Background(), "t1", Delta{Append: []core.Message{core.NewHumanMessage("b")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "extra"}, visited, "second run sees checkpointed message and branches")
}

func TestWorkflow_NodeErrorPropagates(t *testing.T) {
	g := NewGraph()
	g.AddNode("boom", func(context.Context, core.ConversationState) (Delta, error) {
		return Delta{}, fmt.Errorf("provider unreachable")
	})
	g.SetEntryPoint("boom")

	wf, err := g.Compile()
	require.NoError(t, err)

	_, err = wf.Invoke(context.Background(), "t1", Delta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node boom")
	assert.Contains(t, err.Error(), "provider unreachable")
}

func TestWorkflow_MaxStepsGuard(t *testing.T) {
	g := NewGraph()
	g.AddNode("loop", func(context.Context, core.ConversationState) (Delta, error) { return Delta{}, nil })
	g.SetEntryPoint("loop")
	g.AddEdge("loop", "loop")

	wf, err := g.Compile(func(o *CompileOptions) { o.MaxSteps = 3 })
	require.NoError(t, err)

	_, err = wf.Invoke(context.Background(), "t1", Delta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 3 steps")
}

func TestMemorySaver_ClonesOnLoadAndSave(t *testing.T) {
	saver := NewMemorySaver()

	state := core.NewConversationState("t1")
	state.Messages = []core.Message{core.NewHumanMessage("hi")}
	saver.Save("t1", state)

	state.Messages[0].Content = "mutated"

	loaded, ok := saver.Load("t1")
	require.True(t, ok)
	assert.Equal(t, "hi", loaded.Messages[0].Content)

	_, ok = saver.Load("unknown")
	assert.False(t, ok)
}
