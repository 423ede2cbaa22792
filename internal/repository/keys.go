package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

func clanKey(id model.ClanID) string {
	return fmt.Sprintf("clan:%d", id)
}

func memberKey(id model.ClanID, jid model.JID) string {
	return fmt.Sprintf("clan:%d:member:%s", id, jid)
}

func memberPrefix(id model.ClanID) string {
	return fmt.Sprintf("clan:%d:member:", id)
}

func inviteKey(id model.ClanID, jid model.JID) string {
	return fmt.Sprintf("clan:%d:invite:%s", id, jid)
}

func invitePrefix(id model.ClanID) string {
	return fmt.Sprintf("clan:%d:invite:", id)
}

func requestKey(id model.ClanID, jid model.JID) string {
	return fmt.Sprintf("clan:%d:request:%s", id, jid)
}

func requestPrefix(id model.ClanID) string {
	return fmt.Sprintf("clan:%d:request:", id)
}

func blacklistKey(id model.ClanID, jid model.JID) string {
	return fmt.Sprintf("clan:%d:blacklist:%s", id, jid)
}

func blacklistPrefix(id model.ClanID) string {
	return fmt.Sprintf("clan:%d:blacklist:", id)
}

func announcementKey(id model.ClanID, seq uint64) string {
	return fmt.Sprintf("clan:%d:ann:%010d", id, seq)
}

func announcementPrefix(id model.ClanID) string {
	return fmt.Sprintf("clan:%d:ann:", id)
}

func clanPrefix(id model.ClanID) string {
	return fmt.Sprintf("clan:%d:", id)
}

func playerClaimKey(jid model.JID) string {
	return fmt.Sprintf("player:%s", jid)
}

func playerInviteKey(jid model.JID, id model.ClanID) string {
	return fmt.Sprintf("player:%s:invites:%d", jid, id)
}

func playerInvitePrefix(jid model.JID) string {
	return fmt.Sprintf("player:%s:invites:", jid)
}

func playerRequestKey(jid model.JID, id model.ClanID) string {
	return fmt.Sprintf("player:%s:requests:%d", jid, id)
}

func playerRequestPrefix(jid model.JID) string {
	return fmt.Sprintf("player:%s:requests:", jid)
}

func clanNameIndexKey(name string) string {
	return "index:clanname:" + strings.ToLower(name)
}

func clanTagIndexKey(tag string) string {
	return "index:clantag:" + strings.ToLower(tag)
}

const clanSeqKey = "seq:clan"

// putJSON marshals v and stores it at key.
func putJSON(ctx context.Context, store database.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return store.Put(ctx, key, data)
}

// getJSON loads key and unmarshals it into v. database.ErrNotFound
// passes through untouched so callers can map it to a domain error.
func getJSON(ctx context.Context, store database.Store, key string, v any) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
