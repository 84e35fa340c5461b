// Package core provides the foundational conversation types shared by the
// rest of agentgraph. It defines:
//
//   - Messages (role + ordered content blocks) and the closed ContentBlock union
//   - StopReason classification and token Usage accounting
//   - Response, the fully reconstructed output of one model turn
//
// The package intentionally keeps implementation concerns (streaming, tool
// execution, state machine orchestration) out of scope so that every other
// package can depend on it without cycles.
package core
