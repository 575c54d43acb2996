// Package llm provides the external AI classification boundary: a provider
// interface, a Gemini-backed implementation, response parsing and
// validation, and request rate limiting.
package llm
