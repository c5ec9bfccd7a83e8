package bot

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/tracker"
)

const helpText = `Available commands:
/login <email> <password> - Sign in to the attendance API
/logout - Sign out and drop the working session
/sections - List your sections
/section <name> - Select a section
/take - Start taking attendance for the selected section
/submit - Submit the working session
/report - Show the latest submitted session
/history <student> - Attendance history in the selected section
/percent <student> [month year] - Attendance percentage
/help - Show this message

Examples:
/section CS-A (CSE 2)
/percent 64f1c0 3 2024`

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":    b.handleHelp,
		"help":     b.handleHelp,
		"login":    b.handleLogin,
		"logout":   b.handleLogout,
		"sections": b.requireLogin(b.handleSections),
		"section":  b.requireLogin(b.handleSection),
		"take":     b.requireLogin(b.handleTake),
		"submit":   b.requireLogin(b.handleSubmit),
		"report":   b.handleReport,
		"history":  b.handleHistory,
		"percent":  b.handlePercent,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) requireLogin(next commandHandler) commandHandler {
	return func(msg *tgbotapi.Message) error {
		if !b.tracker.IsAuthenticated() {
			return fmt.Errorf("%w, use /login first", tracker.ErrNotAuthenticated)
		}
		return next(msg)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || !b.admins[msg.From.ID] {
		logger.Debug.Printf("Ignoring message from non-admin chat %d", msg.Chat.ID)
		return
	}

	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	handler, ok := b.routeCommands(msg.Command())
	if !ok {
		b.sendHelp(msg.Chat.ID)
		return
	}
	if err := handler(msg); err != nil {
		logger.Error.Printf("Command error: %v", err)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
	}
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendMessage(msg.Chat.ID, helpText)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Use commands to talk to the bot. Send /help for the list.")
}

func (b *Bot) handleLogin(msg *tgbotapi.Message) error {
	// the password should not linger in the chat
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		logger.Debug.Printf("Failed to delete login message: %v", err)
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return fmt.Errorf("usage: /login <email> <password>")
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	if err := b.tracker.Login(ctx, args[0], args[1]); err != nil {
		if errors.Is(err, tracker.ErrInvalidCredentials) {
			return b.sendMessage(msg.Chat.ID, "❌ Invalid email or password")
		}
		return err
	}
	if err := b.tracker.LoadSections(ctx); err != nil {
		logger.Error.Printf("Failed to load sections after login: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Signed in as %s. Use /sections to pick a class.", b.tracker.TeacherName()))
}

func (b *Bot) handleLogout(msg *tgbotapi.Message) error {
	b.tracker.Logout()
	return b.sendMessage(msg.Chat.ID, "Signed out")
}

func (b *Bot) handleSections(msg *tgbotapi.Message) error {
	ctx, cancel := b.requestContext()
	defer cancel()

	if err := b.tracker.LoadSections(ctx); err != nil {
		logger.Error.Printf("Failed to reload sections: %v", err)
	}

	names := b.tracker.SectionNames()
	if len(names) == 0 {
		return b.sendMessage(msg.Chat.ID, "No sections found")
	}

	var text strings.Builder
	text.WriteString("Your sections:\n\n")
	for _, name := range names {
		text.WriteString(fmt.Sprintf("📚 %s\n", name))
	}
	text.WriteString("\nSelect one with /section <name>")
	return b.sendMessage(msg.Chat.ID, text.String())
}

func (b *Bot) handleSection(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return fmt.Errorf("usage: /section <name>")
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	if err := b.tracker.SelectSection(ctx, name); err != nil {
		logger.Error.Printf("Failed to load roster for %s: %v", name, err)
	}

	roster := b.tracker.ActiveRoster()
	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Selected %s, %d students. Send /take to start.", name, len(roster)))
}

func (b *Bot) handleTake(msg *tgbotapi.Message) error {
	if b.tracker.SelectedSection() == "" {
		return fmt.Errorf("no section selected, use /section <name>")
	}
	b.tracker.StartSession()
	return b.sendNextCard(msg.Chat.ID)
}

func (b *Bot) handleSubmit(msg *tgbotapi.Message) error {
	if b.tracker.SelectedSection() == "" {
		return fmt.Errorf("no section selected, use /section <name>")
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	session := b.tracker.SubmitSession(ctx)
	return b.sendMessage(msg.Chat.ID, "✅ Submitted\n\n"+formatSession(session, b.labeler(session.Section)))
}

func (b *Bot) handleReport(msg *tgbotapi.Message) error {
	session, ok := b.tracker.LatestSession()
	if !ok {
		return b.sendMessage(msg.Chat.ID, "No attendance records yet")
	}
	return b.sendMessage(msg.Chat.ID, formatSession(session, b.labeler(session.Section)))
}

func (b *Bot) handleHistory(msg *tgbotapi.Message) error {
	student := strings.TrimSpace(msg.CommandArguments())
	if student == "" {
		return fmt.Errorf("usage: /history <student>")
	}

	section := b.tracker.SelectedSection()
	if section == "" {
		return fmt.Errorf("no section selected, use /section <name>")
	}

	records := b.tracker.StudentHistory(student, section)
	return b.sendMessage(msg.Chat.ID, formatHistory(b.labeler(section)(student), records))
}

func (b *Bot) handlePercent(msg *tgbotapi.Message) error {
	student, filter, err := parsePercentArgs(strings.Fields(msg.CommandArguments()))
	if err != nil {
		return err
	}

	section := b.tracker.SelectedSection()
	if section == "" {
		return fmt.Errorf("no section selected, use /section <name>")
	}

	summary := b.tracker.AttendanceSummary(student, section, filter)
	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("%s: %d%% (%d of %d present)",
		b.labeler(section)(student),
		summary.Percentage,
		summary.Present,
		summary.Total,
	))
}

// handleCallback processes a Present/Absent tap and moves to the next card.
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || !b.admins[cb.From.ID] || cb.Message == nil {
		return
	}

	studentID, status, err := parseCallbackData(cb.Data)
	if err != nil {
		logger.Error.Printf("Callback error: %v", err)
		b.answerCallback(cb.ID, "Unknown action")
		return
	}

	b.tracker.MarkAttendance(studentID, status)
	b.answerCallback(cb.ID, status.Wire())

	name, _ := b.tracker.StudentLabel(studentID, b.tracker.SelectedSection())
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
		fmt.Sprintf("%s: %s", name, status.Wire()))
	if _, err := b.api.Send(edit); err != nil {
		logger.Debug.Printf("Failed to edit card: %v", err)
	}

	if err := b.sendNextCard(cb.Message.Chat.ID); err != nil {
		logger.Error.Printf("Failed to send next card: %v", err)
	}
}

func (b *Bot) sendNextCard(chatID int64) error {
	student, ok := b.tracker.NextStudent()
	if !ok {
		return b.sendMessage(chatID, "🎉 Everyone is marked\n"+formatProgress(b.tracker.Progress())+"\n\nSend /submit to save.")
	}

	msg := tgbotapi.NewMessage(chatID, formatCard(student, b.tracker.Progress()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Present", callbackData(student.ID, models.StatusPresent)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Absent", callbackData(student.ID, models.StatusAbsent)),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) labeler(section string) func(string) string {
	return func(studentID string) string {
		name, roll := b.tracker.StudentLabel(studentID, section)
		return fmt.Sprintf("%s (%s)", name, roll)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.Debug.Printf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
