// Package repository implements data access for clans, members,
// invitations, membership requests, blacklists and announcements on top
// of the database.Store key/value abstraction.
//
// Records are stored as JSON under a flat key schema:
//
//	clan:{id}                     clan record
//	clan:{id}:member:{jid}        member record
//	clan:{id}:invite:{jid}        invitation record
//	clan:{id}:request:{jid}       membership request record
//	clan:{id}:blacklist:{jid}     blacklist entry
//	clan:{id}:ann:{seq}           announcement (zero-padded seq)
//	player:{jid}                  membership claim (clan id)
//	player:{jid}:invites:{id}     invite marker for player-side listing
//	player:{jid}:requests:{id}    request marker for player-side listing
//	index:clanname:{name}         clan name uniqueness index
//	index:clantag:{tag}           clan tag uniqueness index
//	seq:clan                      clan id counter
//
// Repositories do not enforce domain rules; uniqueness indexes and the
// player claim key are the only store-level invariants, held atomically
// via PutIfAbsent.
package repository
