// Package workflow provides the conversation state machine of ChatMesh.
//
// The generic part is a small graph executor: named nodes transform a
// core.ConversationState into a Delta, edges (plain or conditional) select
// the next node, and a per-thread checkpointer keeps ephemeral working
// memory between runs. Deltas use explicit reducer semantics (prune to the
// newest n messages, append messages, replace the summary, merge token
// usage) instead of synthesizing deletions by message identity.
//
// On top of the executor, NewChatWorkflow wires the bounded-memory chat
// graph: reconcile -> generate -> decide -> {summarize -> end | end}. The
// reconcile node rebuilds working memory from the newest persisted message
// pair, which is why the checkpointer never needs to be durable.
package workflow
