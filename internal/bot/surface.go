package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"announcer-bot/internal/delivery"
)

// Surface adapts telebot to the delivery.Surface contract, mapping
// Telegram API failures onto the delivery sentinel errors.
type Surface struct {
	bot *tele.Bot
}

// Resolve checks that the chat still resolves to a sendable target.
func (s *Surface) Resolve(_ context.Context, channelID int64) error {
	_, err := s.bot.ChatByID(channelID)
	return mapTeleError(err)
}

// Send posts text to the chat.
func (s *Surface) Send(_ context.Context, channelID int64, text string) (delivery.MessageRef, error) {
	msg, err := s.bot.Send(tele.ChatID(channelID), text)
	if err != nil {
		return delivery.MessageRef{}, mapTeleError(err)
	}
	return delivery.MessageRef{ChannelID: channelID, MessageID: msg.ID}, nil
}

// Edit replaces the text of a previously sent message. A missing message
// maps to delivery.ErrMessageNotFound, which is how the core learns a
// rendered game board has been deleted.
func (s *Surface) Edit(_ context.Context, ref delivery.MessageRef, text string) error {
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChannelID,
	}
	_, err := s.bot.Edit(stored, text)
	if err != nil && errors.Is(err, tele.ErrSameMessageContent) {
		// An unchanged board after a repeat guess is not a failure.
		return nil
	}
	return mapTeleError(err)
}

// mapTeleError translates Telegram API errors into delivery sentinels.
// 403-class failures mean the bot may not post there; everything else
// unknown stays as-is and is treated as transient by callers.
func mapTeleError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		desc := apiErr.Description
		switch {
		case apiErr.Code == 403:
			return fmt.Errorf("%w: %s", delivery.ErrUnauthorized, desc)
		case strings.Contains(desc, "not enough rights"),
			strings.Contains(desc, "have no rights"):
			return fmt.Errorf("%w: %s", delivery.ErrUnauthorized, desc)
		case strings.Contains(desc, "chat not found"):
			return fmt.Errorf("%w: %s", delivery.ErrChannelNotFound, desc)
		case strings.Contains(desc, "message to edit not found"):
			return fmt.Errorf("%w: %s", delivery.ErrMessageNotFound, desc)
		}
	}
	return err
}
