package bot

import (
	"testing"

	"pgregory.net/rapid"

	"announcer-bot/internal/config"
)

// TestAdminCheckProperty checks that a user is recognized as admin exactly
// when their ID appears in the configured admin list.
func TestAdminCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := rapid.SliceOfN(rapid.Int64Range(1, 1_000_000_000), 1, 10).Draw(t, "adminIDs")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		userID := rapid.Int64Range(1, 1_000_000_000).Draw(t, "userID")

		want := false
		for _, id := range adminIDs {
			if id == userID {
				want = true
				break
			}
		}

		if got := cfg.IsAdmin(userID); got != want {
			t.Fatalf("IsAdmin(%d) = %v, want %v (admins %v)", userID, got, want, adminIDs)
		}
	})
}

// TestWhitelistEnforcementProperty checks that a chat is allowed exactly
// when it appears in a non-empty whitelist.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatIDs := rapid.SliceOfN(rapid.Int64Range(1, 1_000_000_000), 1, 10).Draw(t, "chatIDs")
		// Group chat IDs are negative on Telegram.
		for i := range chatIDs {
			chatIDs[i] = -chatIDs[i]
		}
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chatIDs}}

		testChatID := -rapid.Int64Range(1, 1_000_000_000).Draw(t, "testChatID")

		want := false
		for _, id := range chatIDs {
			if id == testChatID {
				want = true
				break
			}
		}

		if got := cfg.IsChatAllowed(testChatID); got != want {
			t.Fatalf("IsChatAllowed(%d) = %v, want %v (whitelist %v)", testChatID, got, want, chatIDs)
		}
	})
}

// TestEmptyWhitelistAllowsAllChatsProperty checks the open-by-default rule.
func TestEmptyWhitelistAllowsAllChatsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{}
		chatID := -rapid.Int64Range(1, 1_000_000_000).Draw(t, "chatID")

		if !cfg.IsChatAllowed(chatID) {
			t.Fatalf("empty whitelist must allow chat %d", chatID)
		}
	})
}
