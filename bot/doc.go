// Package bot provides the assembly layer of ChatMesh: a staged Builder that
// validates and composes a model provider, a conversation store and a chat
// workflow into an immutable Bot, plus the provider factory mapping the
// closed provider enum to concrete model adapters.
//
// A Bot processes one conversational turn per Chat call: the workflow
// reconciles persisted history, generates a reply and compresses history
// when needed; the bot then persists exactly one message pair, including on
// the failure path. Turns on the same thread are serialized by a per-thread
// mutex so concurrent calls cannot branch the conversation.
package bot
