package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meetmate/internal/conversation"
	"meetmate/internal/service"
)

// Router wires Telegram updates to handlers: commands and callbacks select
// flows, free text advances the per-user conversation state machine.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	svc      *service.Service
	sessions *conversation.Sessions
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, svc *service.Service, sessions *conversation.Sessions) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		svc:      svc,
		sessions: sessions,
	}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		if msg.From == nil {
			return
		}
		text := strings.TrimSpace(msg.Text)

		if strings.HasPrefix(text, "/start") {
			r.handleStart(ctx, msg)
			return
		}
		// Anything else is free-form input for the current conversation step.
		r.handleText(ctx, msg.From.ID, msg.Text)
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		userID := cb.From.ID
		data := cb.Data

		// Ack first so the client stops the spinner even if handling fails.
		if _, err := r.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			r.log.Warn("callback ack failed", zap.Error(err))
		}

		switch {
		case data == cbMainMenu:
			r.sessions.Reset(userID)
			r.send(userID, textMainMenu, mainMenuKeyboard())
		case data == cbCreateEvent:
			r.handleCreateEvent(ctx, userID)
		case data == cbListUsers:
			r.handleListUsers(ctx, userID)
		case data == cbMyEvents:
			r.handleMyEvents(ctx, userID)
		case data == cbCancelDelete:
			r.sessions.Reset(userID)
			r.send(userID, textDeleteCancelled, mainMenuKeyboard())
		case data == cbCustomReminderYes:
			r.handleCustomReminderYes(userID)
		case data == cbCustomReminderNo:
			r.sessions.Reset(userID)
			r.send(userID, textCreatedNoCustom, mainMenuKeyboard())
		case strings.HasPrefix(data, cbSelectUserPrefix):
			if id, ok := idSuffix(data, cbSelectUserPrefix); ok {
				r.handleSelectParticipant(userID, id)
			}
		case strings.HasPrefix(data, cbConfirmDeletePrefix):
			if id, ok := idSuffix(data, cbConfirmDeletePrefix); ok {
				r.handleConfirmDelete(ctx, userID, id)
			}
		case strings.HasPrefix(data, cbEditEventPrefix):
			if id, ok := idSuffix(data, cbEditEventPrefix); ok {
				r.handleEditEvent(ctx, userID, id)
			}
		case strings.HasPrefix(data, cbDeleteEventPrefix):
			if id, ok := idSuffix(data, cbDeleteEventPrefix); ok {
				r.handleDeleteEvent(ctx, userID, id)
			}
		default:
			r.log.Warn("unknown callback", zap.String("data", data))
		}
	}
}

// idSuffix extracts the numeric id after a callback data prefix.
func idSuffix(data, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// send delivers an HTML message with an optional inline keyboard. Delivery
// failures are logged, never propagated: the triggering mutation stands.
func (r *Router) send(userID int64, text string, markup ...tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if len(markup) > 0 {
		msg.ReplyMarkup = markup[0]
	}
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Int64("userID", userID), zap.Error(err))
	}
}
