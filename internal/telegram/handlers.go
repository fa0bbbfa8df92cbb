package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meetmate/internal/conversation"
	"meetmate/internal/domain"
)

// handleStart registers the user on first contact and shows the main menu.
func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	u := domain.User{
		ID:        from.ID,
		FirstName: html.EscapeString(from.FirstName),
		LastName:  html.EscapeString(from.LastName),
		Username:  html.EscapeString(from.UserName),
	}

	existed, err := r.svc.EnsureUser(ctx, u)
	if err != nil {
		r.log.Error("register user failed", zap.Int64("userID", u.ID), zap.Error(err))
		r.send(u.ID, textGenericError)
		return
	}

	r.sessions.Reset(u.ID)
	if existed {
		r.send(u.ID, textAlreadyKnown, mainMenuKeyboard())
		return
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	r.send(u.ID, fmt.Sprintf(textRegisteredFmt, name), mainMenuKeyboard())
}

// handleText advances the conversation state machine with free-form input.
// Input that does not belong to the current step is rejected with a
// diagnostic; the step is left unchanged.
func (r *Router) handleText(ctx context.Context, userID int64, text string) {
	sess := r.sessions.Get(userID)

	switch sess.Step {
	case conversation.StepAwaitingDescription, conversation.StepEditAwaitingDescription:
		r.submitDescription(userID, sess, text)
	case conversation.StepAwaitingDateTime:
		r.submitCreateDateTime(ctx, userID, sess, text)
	case conversation.StepEditAwaitingDateTime:
		r.submitEditDateTime(ctx, userID, sess, text)
	case conversation.StepAwaitingCustomMinutes:
		r.submitCustomMinutes(ctx, userID, sess, text)
	default:
		r.send(userID, textWrongState, backToMenuKeyboard())
	}
}

func (r *Router) submitDescription(userID int64, sess conversation.Session, text string) {
	next, err := conversation.SubmitDescription(sess, text)
	if err != nil {
		// Empty after trimming: re-prompt the same step.
		r.send(userID, textEmptyDescription, backToMenuKeyboard())
		return
	}
	r.sessions.Set(userID, next)

	prompt := textAskDateTime
	if next.Step == conversation.StepEditAwaitingDateTime {
		prompt = textAskNewDateTime
	}
	r.send(userID, prompt, backToMenuKeyboard())
}

func (r *Router) submitCreateDateTime(ctx context.Context, userID int64, sess conversation.Session, text string) {
	at, err := conversation.SubmitDateTime(sess, text, r.svc.Now(), r.svc.Location())
	if err != nil {
		r.send(userID, dateTimeErrorText(err), backToMenuKeyboard())
		return
	}

	_, err = r.svc.CreateEvent(ctx, userID, sess.ParticipantID, sess.Description, at)
	switch {
	case errors.Is(err, domain.ErrConflict):
		// Draft description stays; the same step re-prompts.
		r.send(userID, textSlotTaken, backToMenuKeyboard())
	case err != nil:
		r.log.Error("create event failed", zap.Int64("userID", userID), zap.Error(err))
		r.sessions.Reset(userID)
		r.send(userID, textGenericError, mainMenuKeyboard())
	default:
		r.sessions.Set(userID, conversation.OfferCustomReminder())
		r.send(userID, textOfferCustom, customReminderKeyboard())
	}
}

func (r *Router) submitEditDateTime(ctx context.Context, userID int64, sess conversation.Session, text string) {
	at, err := conversation.SubmitDateTime(sess, text, r.svc.Now(), r.svc.Location())
	if err != nil {
		r.send(userID, dateTimeErrorText(err), backToMenuKeyboard())
		return
	}

	_, err = r.svc.EditEvent(ctx, userID, sess.EventID, sess.Description, at)
	switch {
	case errors.Is(err, domain.ErrConflict):
		r.send(userID, textSlotTaken, backToMenuKeyboard())
	case errors.Is(err, domain.ErrNotFound):
		r.sessions.Reset(userID)
		r.send(userID, textEventNotFound, mainMenuKeyboard())
	case errors.Is(err, domain.ErrNotAuthorized):
		r.sessions.Reset(userID)
		r.send(userID, textNotCreator, mainMenuKeyboard())
	case err != nil:
		r.log.Error("edit event failed", zap.Int64("eventID", sess.EventID), zap.Error(err))
		r.sessions.Reset(userID)
		r.send(userID, textGenericError, mainMenuKeyboard())
	default:
		r.sessions.Reset(userID)
		r.send(userID, textEdited, mainMenuKeyboard())
	}
}

func (r *Router) submitCustomMinutes(ctx context.Context, userID int64, sess conversation.Session, text string) {
	minutes, err := conversation.SubmitCustomMinutes(sess, text)
	if err != nil {
		r.send(userID, textBadMinutes, backToMenuKeyboard())
		return
	}

	ev, remindAt, err := r.svc.AddCustomReminder(ctx, userID, minutes)
	switch {
	case errors.Is(err, domain.ErrReminderPast):
		r.sessions.Reset(userID)
		r.send(userID, textReminderPast, mainMenuKeyboard())
	case errors.Is(err, domain.ErrNotFound):
		r.sessions.Reset(userID)
		r.send(userID, textEventNotFound, mainMenuKeyboard())
	case err != nil:
		r.log.Error("add custom reminder failed", zap.Int64("userID", userID), zap.Error(err))
		r.sessions.Reset(userID)
		r.send(userID, textGenericError, mainMenuKeyboard())
	default:
		r.sessions.Reset(userID)
		loc := r.svc.Location()
		r.send(userID, fmt.Sprintf(textCustomSetFmt,
			domain.FormatEventTime(ev.StartsAt, loc), minutes, domain.FormatEventTime(remindAt, loc),
		), mainMenuKeyboard())
	}
}

func dateTimeErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrPastDateTime):
		return textPastDateTime
	case errors.Is(err, conversation.ErrWrongStep):
		return textWrongState
	default:
		return textBadDateTime
	}
}

// handleCreateEvent starts the creation flow with a participant pick.
func (r *Router) handleCreateEvent(ctx context.Context, userID int64) {
	users, err := r.svc.Candidates(ctx, userID)
	if err != nil {
		r.log.Error("list candidates failed", zap.Error(err))
		r.send(userID, textGenericError, backToMenuKeyboard())
		return
	}
	if len(users) == 0 {
		r.send(userID, textNoCandidates, backToMenuKeyboard())
		return
	}

	r.sessions.Set(userID, conversation.StartCreate())
	r.send(userID, textPickParticipant, participantsKeyboard(users))
}

func (r *Router) handleSelectParticipant(userID, participantID int64) {
	next, err := conversation.ChooseParticipant(r.sessions.Get(userID), participantID)
	if err != nil {
		r.send(userID, textWrongState, backToMenuKeyboard())
		return
	}
	r.sessions.Set(userID, next)
	r.send(userID, textAskDescription, backToMenuKeyboard())
}

func (r *Router) handleListUsers(ctx context.Context, userID int64) {
	users, err := r.svc.AllUsers(ctx)
	if err != nil {
		r.log.Error("list users failed", zap.Error(err))
		r.send(userID, textGenericError, backToMenuKeyboard())
		return
	}
	if len(users) == 0 {
		r.send(userID, textNoUsers, backToMenuKeyboard())
		return
	}

	var b strings.Builder
	b.WriteString("📋 <b>Registered users:</b>\n")
	for _, u := range users {
		b.WriteString("👤 " + u.DisplayName() + "\n")
	}
	r.send(userID, b.String(), backToMenuKeyboard())
}

func (r *Router) handleMyEvents(ctx context.Context, userID int64) {
	events, err := r.svc.EventsForUser(ctx, userID)
	if err != nil {
		r.log.Error("list events failed", zap.Error(err))
		r.send(userID, textGenericError, backToMenuKeyboard())
		return
	}
	if len(events) == 0 {
		r.send(userID, textNoEvents, backToMenuKeyboard())
		return
	}

	loc := r.svc.Location()
	var b strings.Builder
	b.WriteString("📅 <b>Your events:</b>\n\n")
	for _, ev := range events {
		b.WriteString(fmt.Sprintf(
			"• <b>ID:</b> %d\n  <b>Description:</b> %s\n  <b>Date and time:</b> %s\n  <b>Participant:</b> %s\n  <b>Creator:</b> %s\n\n",
			ev.ID,
			ev.Description,
			domain.FormatEventTime(ev.StartsAt, loc),
			r.displayName(ctx, ev.ParticipantID),
			r.displayName(ctx, ev.CreatorID),
		))
	}
	r.send(userID, b.String(), eventListControls(events, userID))
}

func (r *Router) displayName(ctx context.Context, userID int64) string {
	u, err := r.svc.GetUser(ctx, userID)
	if err != nil {
		return "Unknown User"
	}
	return u.DisplayName()
}

// handleEditEvent checks creator-only access before entering edit steps.
func (r *Router) handleEditEvent(ctx context.Context, userID, eventID int64) {
	if _, err := r.svc.AuthorizeCreator(ctx, userID, eventID); err != nil {
		r.send(userID, authErrorText(err), backToMenuKeyboard())
		return
	}
	r.sessions.Set(userID, conversation.StartEdit(eventID))
	r.send(userID, textAskNewDesc, backToMenuKeyboard())
}

func (r *Router) handleDeleteEvent(ctx context.Context, userID, eventID int64) {
	if _, err := r.svc.AuthorizeCreator(ctx, userID, eventID); err != nil {
		r.send(userID, authErrorText(err), backToMenuKeyboard())
		return
	}
	r.send(userID,
		fmt.Sprintf("🗑 Are you sure you want to delete event ID:%d?", eventID),
		confirmDeleteKeyboard(eventID))
}

func (r *Router) handleConfirmDelete(ctx context.Context, userID, eventID int64) {
	err := r.svc.DeleteEvent(ctx, userID, eventID)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotAuthorized):
		r.sessions.Reset(userID)
		r.send(userID, authErrorText(err), mainMenuKeyboard())
	case err != nil:
		r.log.Error("delete event failed", zap.Int64("eventID", eventID), zap.Error(err))
		r.sessions.Reset(userID)
		r.send(userID, textGenericError, mainMenuKeyboard())
	default:
		r.sessions.Reset(userID)
		r.send(userID, textDeleted, mainMenuKeyboard())
	}
}

func (r *Router) handleCustomReminderYes(userID int64) {
	next, err := conversation.AcceptCustomReminder(r.sessions.Get(userID))
	if err != nil {
		r.send(userID, textWrongState, backToMenuKeyboard())
		return
	}
	r.sessions.Set(userID, next)
	r.send(userID, textAskMinutes, backToMenuKeyboard())
}

func authErrorText(err error) string {
	if errors.Is(err, domain.ErrNotAuthorized) {
		return textNotCreator
	}
	return textEventNotFound
}
