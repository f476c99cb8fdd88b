// Package mcp exposes the indexing and search pipeline as Model Context
// Protocol tools over stdio.
//
// # Tools
//
//   - register_repository: register a GitHub repository by owner/name
//   - start_indexing: launch an asynchronous indexing job
//   - get_progress: snapshot a job's stage and counters
//   - cancel_indexing: request cancellation of a running job
//   - search_code: semantic search over a repository's indexed blocks
//   - repository_stats: current index statistics for a repository
//   - delete_index: drop a repository's vectors and tracking data
//
// All logging goes to stderr; stdout carries the protocol stream.
//
// # Error Codes
//
// Tool failures use JSON-RPC style codes: -32602 invalid params, -32603
// internal error, plus application codes -32001 (repository not
// registered), -32002 (indexing in progress), -32003 (job not found),
// and -32004 (empty query).
package mcp
