// Package symdex loads sharded symbol search indexes written by documentation
// generators and answers incremental identifier queries against them.
// A shard maps normalized identifier keys to the documented occurrences of
// that identifier; queries are routed to the shards that could contain
// matches, matched by prefix (falling back to substring) and ranked by
// lexical match quality.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, http/, bloom/).
package symdex
