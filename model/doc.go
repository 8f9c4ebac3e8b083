// Package model defines the provider-agnostic completion capability the
// build loop drives, plus a scripted mock for tests. Concrete adapters for
// OpenAI and Anthropic live in subpackages.
package model
