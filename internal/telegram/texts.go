package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meetmate/internal/domain"
)

// Callback data values. Some carry a numeric suffix (user or event id).
const (
	cbMainMenu          = "main_menu"
	cbCreateEvent       = "create_event"
	cbListUsers         = "list_users"
	cbMyEvents          = "my_events"
	cbCancelDelete      = "cancel_delete_event"
	cbCustomReminderYes = "add_custom_reminder_yes"
	cbCustomReminderNo  = "add_custom_reminder_no"

	cbSelectUserPrefix    = "select_user_"
	cbEditEventPrefix     = "edit_event_"
	cbDeleteEventPrefix   = "delete_event_"
	cbConfirmDeletePrefix = "confirm_delete_event_"
)

const (
	textMainMenu         = "🏠 Main menu:"
	textAlreadyKnown     = "✅ You are already registered."
	textRegisteredFmt    = "👋 Hi, %s! You are now registered."
	textNoCandidates     = "❌ No users available to pick as a participant."
	textPickParticipant  = "📋 Pick a participant for the event:"
	textAskDescription   = "✍️ Enter the event description:"
	textAskNewDesc       = "✍️ Enter the new event description:"
	textEmptyDescription = "❌ The description cannot be empty. Please enter the event description:"
	textAskDateTime      = "🕒 Enter the event date and time as DD.MM.YYYY HH:MM:"
	textAskNewDateTime   = "🕒 Enter the new date and time as DD.MM.YYYY HH:MM:"
	textBadDateTime      = "❌ Invalid date/time format. Please enter DD.MM.YYYY HH:MM:"
	textPastDateTime     = "❌ Enter a date and time from now onward:"
	textSlotTaken        = "❌ That time is already taken. Please pick another time:"
	textOfferCustom      = "🎯 Add an extra reminder a chosen number of minutes before the event?"
	textAskMinutes       = "🕒 How many minutes before the event should the extra reminder fire (1-60)?"
	textBadMinutes       = "❌ Invalid input. Please enter a whole number from 1 to 60:"
	textReminderPast     = "❌ That reminder time has already passed."
	textCreatedNoCustom  = "✅ Your event has been created. Main menu."
	textCustomSetFmt     = "✅ Event scheduled for %s.\nExtra reminder set %d minutes before, at %s."
	textEdited           = "✅ Your event has been updated. Main menu."
	textDeleted          = "✅ The event has been deleted. Main menu."
	textDeleteCancelled  = "❌ Deletion cancelled. Main menu."
	textNoEvents         = "📭 You have no scheduled events."
	textNoUsers          = "❌ No registered users."
	textEventNotFound    = "❌ Event not found."
	textNotCreator       = "❌ You are not the creator of this event."
	textWrongState       = "❌ I wasn't expecting that input here. Use the menu below."
	textGenericError     = "❌ Something went wrong. Please try again."
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 My events", cbMyEvents),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Create new event", cbCreateEvent),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 List users", cbListUsers),
		),
	)
}

func backToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main menu", cbMainMenu),
		),
	)
}

func participantsKeyboard(users []domain.User) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(users)+1)
	for _, u := range users {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(u.DisplayName(), fmt.Sprintf("%s%d", cbSelectUserPrefix, u.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Main menu", cbMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func customReminderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", cbCustomReminderYes),
			tgbotapi.NewInlineKeyboardButtonData("No", cbCustomReminderNo),
		),
	)
}

func confirmDeleteKeyboard(eventID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", fmt.Sprintf("%s%d", cbConfirmDeletePrefix, eventID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbCancelDelete),
		),
	)
}

// eventListControls builds edit/delete rows for events the viewer created,
// plus the main menu row.
func eventListControls(events []domain.Event, viewerID int64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ev := range events {
		if ev.CreatorID != viewerID {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✏️ Edit #%d", ev.ID),
				fmt.Sprintf("%s%d", cbEditEventPrefix, ev.ID),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 Delete #%d", ev.ID),
				fmt.Sprintf("%s%d", cbDeleteEventPrefix, ev.ID),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Main menu", cbMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
