// Package model defines the domain entities of the clans service.
//
// The model package contains the struct definitions shared across all layers:
// clans, members, invitations, membership requests, blacklist entries,
// announcements, and the decoded identity claim produced by the ticket
// collaborator. Entities reference each other by id (clan id, JID), never by
// embedded mutable structures, so ownership stays acyclic.
//
// # Roles and statuses
//
// Member roles and statuses use the numeric values the game client expects on
// the wire (Leader=4, SubLeader=3, Member=2; status Member=1, Invited=2,
// Pending=3). Rank comparisons go through Role.AtLeast and Role.Outranks so
// permission checks never compare raw integers directly.
//
// # Serialization
//
// All persisted entities carry json tags; the repository layer stores them as
// JSON documents in the key-addressable store. Wire (XML) rendering lives in
// the protocol package, not here.
package model
