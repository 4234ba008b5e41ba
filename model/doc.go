// Package model defines the provider-agnostic abstraction for language model
// backends in ChatMesh.
//
// Core goals:
//   - Keep the generation contract minimal: ordered role/content messages in,
//     one assistant message plus token usage out
//   - Normalize configuration (temperature, max tokens, request timeout)
//     across vendors
//   - Fail fast on unsupported providers and model names instead of silently
//     substituting a default
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (Groq, OpenAI, Anthropic) implement the Model interface from this
// package so the workflow engine and agents remain decoupled from vendor SDKs.
package model
