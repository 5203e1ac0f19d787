// Package conversation holds the branching conversation trees and the
// turn engine that grows them.
//
// Each conversation is an arena of nodes: a message-less root plus one
// node per appended message, linked by ids. The tree is append-only.
// AppendChild is the only growth operation and nothing ever removes or
// reorders a node, so ids handed out to clients stay valid for the life
// of the conversation. A current pointer marks the active branch; it is
// advisory state that moves on append or by an explicit branch switch
// and never affects the tree shape.
//
// Mutations on one conversation are serialized by a per-conversation
// lock. The engine never holds that lock across a model call: it
// snapshots the path, calls the provider, and appends the result, so a
// slow upstream blocks nothing but its own request.
package conversation
