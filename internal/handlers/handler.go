package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/holmlund/replicate-ideogram-pipeline/internal/imagegen"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/session"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/telegram"
)

type Options struct {
	Telegram *telegram.Client
	Pipeline *imagegen.Pipeline
	History  *session.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg      *telegram.Client
	pipe    *imagegen.Pipeline
	history *session.Store
	logger  *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:      opts.Telegram,
		pipe:    opts.Pipeline,
		history: opts.History,
		logger:  logger,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if msg.Text != "" {
		return h.generate(ctx, chatID, userID, username, msg.Text)
	}

	return nil
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return h.tg.SendText(chatID,
			"🎨 Ideogram Image Bot\n\n"+
				"Send a prompt and I will generate an image with Ideogram v2a.\n\n"+
				"Optional flags at the end of the prompt:\n"+
				"--style <name> (e.g. Realistic, Anime, Render 3D)\n"+
				"--aspect <W:H> (e.g. 16:9)\n"+
				"--res <WxH> (e.g. 1024x1024, overrides aspect)\n\n"+
				"Commands:\n"+
				"/image <prompt> - Generate an image\n"+
				"/history - Your recent generations\n"+
				"/clear - Forget your history\n"+
				"/help - This message",
		)
	case "help":
		return h.tg.SendText(chatID,
			"🎨 Help\n\n"+
				"Any text message is treated as an image prompt.\n"+
				"Flags: --style <name>, --aspect <W:H>, --res <WxH>.\n"+
				"Values may be quoted and are matched loosely, so\n"+
				"\"realistik\" still becomes Realistic.\n"+
				"/history shows your last generations, /clear forgets them.",
		)
	case "clear":
		h.history.Clear(userID)
		return h.tg.SendText(chatID, "✅ History cleared!")
	case "history":
		return h.sendHistory(chatID, userID)
	case "image":
		text := strings.TrimSpace(msg.CommandArguments())
		if text == "" {
			return h.tg.SendText(chatID, "❌ Please provide a prompt.\nExample: /image a banana in space --style Anime")
		}
		return h.generate(ctx, chatID, userID, username, text)
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Try /help.")
	}
}

func (h *Handler) generate(ctx context.Context, chatID int64, userID int64, username, message string) error {
	h.tg.SendTyping(chatID)

	reply := h.pipe.Generate(ctx, message)

	url, ok := imagegen.ImageURL(reply)
	if !ok {
		// Missing prompt, generation failure, or empty output. The
		// pipeline already phrased it for the user.
		return h.tg.SendText(chatID, reply)
	}

	h.history.Record(userID, username, session.Generation{
		Prompt:   strings.TrimSpace(message),
		ImageURL: url,
	})

	if err := h.tg.SendPhotoURL(chatID, url, strings.TrimSpace(message)); err != nil {
		h.logger.Error("photo send failed, falling back to url", "err", err)
		return h.tg.SendText(chatID, url)
	}
	return nil
}

func (h *Handler) sendHistory(chatID int64, userID int64) error {
	recent := h.history.Recent(userID)
	if len(recent) == 0 {
		return h.tg.SendText(chatID, "No generations yet. Send a prompt to get started.")
	}

	var sb strings.Builder
	sb.WriteString("🖼 Your recent generations:\n")
	for i, gen := range recent {
		sb.WriteString(fmt.Sprintf("%d. %s\n%s\n", i+1, gen.Prompt, gen.ImageURL))
	}
	return h.tg.SendText(chatID, sb.String())
}
