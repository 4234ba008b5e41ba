// Package core defines the shared domain types of ChatMesh: conversational
// messages, the workflow state threaded through graph nodes, the persisted
// conversation/message-pair records and the ConversationStore contract that
// storage backends implement.
//
// Core goals:
//   - Keep domain shapes minimal and transport independent
//   - Give every message a stable identity token so state reducers can prune
//     deterministically
//   - Decouple the workflow engine and agents from concrete storage backends
package core
