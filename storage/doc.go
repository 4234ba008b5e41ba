// Package storage provides core.ConversationStore implementations and a
// factory over the closed set of supported backends.
//
// InMemoryStore is a volatile store suited to tests and ephemeral demos; the
// redis subpackage offers a durable backend. The relational backend of the
// surrounding product is an external collaborator and only its contract
// (core.ConversationStore) lives in this module.
package storage
