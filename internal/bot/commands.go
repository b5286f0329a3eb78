package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/models"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

const (
	lecturerHelp = `Available commands:
/token - Get your API token
/shortlist <course> - Show the course shortlist
/mylist <course> - Show your ranking
/chart <course> [n] [reverse] - Show the popularity chart
/top <course> <tutor> - Move a tutor to the top of your ranking
/bottom <course> <tutor> - Move a tutor to the bottom
/up <course> <tutor> - Move a tutor one place up
/down <course> <tutor> - Move a tutor one place down
/move <course> <tutor> <position> - Move a tutor to a position, counting from 1
/help - Show this message`

	adminHelp = lecturerHelp + `

Admin commands:
/link <telegram username> <lecturer email> - Link a telegram account to a lecturer

Examples:
/link jdoe jane.doe@rmit.edu.au
/move COSC2758 a@student.rmit.edu.au 2`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeLecturerCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":     b.handleStart,
		"help":      b.handleHelp,
		"token":     b.handleToken,
		"shortlist": b.handleShortlist,
		"mylist":    b.handleMyList,
		"chart":     b.handleChart,
		"top":       b.handleMove,
		"bottom":    b.handleMove,
		"up":        b.handleMove,
		"down":      b.handleMove,
		"move":      b.handleMove,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"link": b.handleLink,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	// channel posts carry no sender
	if msg.From == nil {
		return
	}
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routeLecturerCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
			return
		}
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := lecturerHelp
	if b.admins[msg.From.ID] {
		text = adminHelp
	}
	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Use commands to talk to the bot. Send /help for the list.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Hi! I help lecturers rank shortlisted tutors.\n\n"
	if b.admins[msg.From.ID] {
		text += "You are an admin. Use /help for the list of commands."
	} else {
		text += "Ask an admin to link your account, then use /token."
	}
	return b.sendMessage(msg.Chat.ID, text)
}

// lecturerFor resolves the lecturer linked to the sender's telegram account.
func (b *Bot) lecturerFor(msg *tgbotapi.Message) (string, error) {
	if msg.From.UserName == "" {
		return "", fmt.Errorf("set a telegram username first")
	}
	link, err := b.links.FetchTelegramLink(context.Background(), msg.From.UserName)
	if err != nil {
		logger.Debug.Printf("No link for %s: %v", msg.From.UserName, err)
		return "", fmt.Errorf("your account is not linked to a lecturer")
	}
	return link.Lecturer, nil
}

func (b *Bot) handleLink(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return fmt.Errorf("usage: /link <telegram username> <lecturer email>")
	}

	link := &models.TelegramLink{
		Username: strings.TrimPrefix(args[0], "@"),
		Lecturer: args[1],
		LinkedAt: time.Now().UTC(),
		LinkedBy: msg.From.ID,
	}
	if err := b.links.SaveTelegramLink(context.Background(), link); err != nil {
		return fmt.Errorf("failed to save link: %v", err)
	}
	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ @%s is now linked to %s", link.Username, link.Lecturer))
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	lecturer, err := b.lecturerFor(msg)
	if err != nil {
		return err
	}

	info, isNew, err := b.links.FetchOrCreateLecturerToken(context.Background(), lecturer)
	if err != nil {
		return fmt.Errorf("failed to issue token: %v", err)
	}

	text := fmt.Sprintf("Your token: %s\nRequested %d times", info.Token, info.RequestCount)
	if isNew {
		text = fmt.Sprintf("New token issued: %s", info.Token)
	}
	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleShortlist(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		return fmt.Errorf("usage: /shortlist <course>")
	}

	shortlist, err := b.service.GetShortlist(args[0])
	if err != nil {
		return err
	}
	if len(shortlist) == 0 {
		return b.sendMessage(msg.Chat.ID, "The shortlist is empty")
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Shortlist for %s:\n\n", args[0]))
	for _, t := range shortlist {
		text.WriteString(fmt.Sprintf("• %s (%s)\n", t.Name, t.Tutor))
	}
	return b.sendMessage(msg.Chat.ID, text.String())
}

func (b *Bot) handleMyList(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		return fmt.Errorf("usage: /mylist <course>")
	}
	lecturer, err := b.lecturerFor(msg)
	if err != nil {
		return err
	}

	list, err := b.service.GetRanking(args[0], lecturer)
	if err != nil {
		return err
	}
	return b.sendMessage(msg.Chat.ID, formatRanking(list))
}

func (b *Bot) handleChart(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 || len(args) > 3 {
		return fmt.Errorf("usage: /chart <course> [n] [reverse]")
	}

	opts := ranking.Options{Limit: b.service.Config.Chart.DefaultLimit}
	for _, arg := range args[1:] {
		if arg == "reverse" {
			opts.Reverse = true
			continue
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return fmt.Errorf("bad chart size %q", arg)
		}
		opts.Limit = n
	}

	scores, err := b.service.AggregateScores(args[0], opts)
	if err != nil {
		return err
	}
	return b.sendMessage(msg.Chat.ID, formatChart(args[0], scores))
}

func (b *Bot) handleMove(msg *tgbotapi.Message) error {
	course, tutor, move, position, err := parseMoveArgs(msg.Command(), strings.Fields(msg.CommandArguments()))
	if err != nil {
		return err
	}
	lecturer, err := b.lecturerFor(msg)
	if err != nil {
		return err
	}

	list, err := b.service.MoveTutor(course, lecturer, tutor, move, position)
	switch {
	case errors.Is(err, terrors.ErrInvalidPosition):
		return fmt.Errorf("position is outside your ranking")
	case err != nil:
		return err
	}
	return b.sendMessage(msg.Chat.ID, formatRanking(list))
}

// parseMoveArgs turns a move command into a ranking move. Positions typed by
// humans count from 1.
func parseMoveArgs(cmd string, args []string) (string, string, ranking.Move, int, error) {
	if cmd == "move" {
		if len(args) != 3 {
			return "", "", "", 0, fmt.Errorf("usage: /move <course> <tutor> <position>")
		}
		pos, err := strconv.Atoi(args[2])
		if err != nil {
			return "", "", "", 0, fmt.Errorf("bad position %q", args[2])
		}
		return args[0], args[1], ranking.MovePosition, pos - 1, nil
	}

	move, err := ranking.ParseMove(cmd)
	if err != nil {
		return "", "", "", 0, err
	}
	if len(args) != 2 {
		return "", "", "", 0, fmt.Errorf("usage: /%s <course> <tutor>", cmd)
	}
	return args[0], args[1], move, 0, nil
}

func formatRanking(list *models.RankingList) string {
	if list.State == models.Uninitialized {
		return fmt.Sprintf("You have not ranked %s yet. Any move starts from the shortlist order.", list.Course)
	}
	if len(list.Entries) == 0 {
		return fmt.Sprintf("Your ranking for %s is empty", list.Course)
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Your ranking for %s:\n\n", list.Course))
	for _, e := range list.Entries {
		text.WriteString(fmt.Sprintf("%d. %s\n", e.Rank+1, e.Tutor))
	}
	return text.String()
}

func formatChart(course string, scores []ranking.Score) string {
	if len(scores) == 0 {
		return fmt.Sprintf("Nobody is shortlisted for %s", course)
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Popularity chart for %s:\n\n", course))
	for i, s := range scores {
		text.WriteString(fmt.Sprintf("%d. %s (%s): %d\n", i+1, s.Name, s.Tutor, s.Score))
	}
	return text.String()
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
