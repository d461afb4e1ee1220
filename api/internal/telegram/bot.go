// Package telegram is a thin delivery channel in front of the orchestrator:
// a text message becomes a TEXT hint, a photo with a caption becomes a
// VISION snapshot. The bot authenticates with its own license key.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hint-gateway/api/internal/hint"
	"hint-gateway/api/internal/util"
)

const defaultPhotoQuestion = "Что на скриншоте? Помоги с задачей."

type Bot struct {
	api        *tgbotapi.BotAPI
	svc        *hint.Service
	licenseKey string
	token      string
	httpc      *http.Client
}

func New(api *tgbotapi.BotAPI, svc *hint.Service, licenseKey string) *Bot {
	return &Bot{
		api:        api,
		svc:        svc,
		licenseKey: licenseKey,
		token:      api.Token,
		httpc:      &http.Client{Timeout: 60 * time.Second},
	}
}

func (b *Bot) Run(updates tgbotapi.UpdatesChannel) {
	for upd := range updates {
		b.HandleUpdate(upd)
	}
}

func (b *Bot) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		switch upd.Message.Command() {
		case "start":
			b.send(cid, "Пришли вопрос текстом — верну подсказку. Скриншот с подписью — разберу задачу. Команды: /health")
		case "health":
			b.send(cid, "✅ OK")
		default:
			b.send(cid, "Неизвестная команда")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	if len(upd.Message.Photo) > 0 {
		b.handlePhoto(ctx, cid, upd)
		return
	}
	if q := strings.TrimSpace(upd.Message.Text); q != "" {
		b.handleText(ctx, cid, q)
	}
}

func (b *Bot) handleText(ctx context.Context, cid int64, question string) {
	res, err := b.svc.Do(ctx, b.licenseKey, hint.Task{Kind: hint.KindText, Question: question})
	if err != nil {
		b.send(cid, "Ошибка: "+err.Error())
		return
	}
	b.send(cid, renderHint(res.Hint))
}

func (b *Bot) handlePhoto(ctx context.Context, cid int64, upd tgbotapi.Update) {
	b.send(cid, "Принял скриншот, обрабатываю…")

	ph := upd.Message.Photo[len(upd.Message.Photo)-1]
	tf, err := b.api.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		b.send(cid, "Не смог получить файл: "+err.Error())
		return
	}
	img, err := b.download(fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", b.token, tf.FilePath))
	if err != nil {
		b.send(cid, "Не смог скачать фото: "+err.Error())
		return
	}

	question := strings.TrimSpace(upd.Message.Caption)
	if question == "" {
		question = defaultPhotoQuestion
	}

	res, err := b.svc.Do(ctx, b.licenseKey, hint.Task{
		Kind:      hint.KindVision,
		Question:  question,
		Image:     img,
		ImageMime: util.SniffImageMime(img),
	})
	if err != nil {
		b.send(cid, "Ошибка: "+err.Error())
		return
	}
	b.send(cid, renderSnapshot(res.Snapshot))
}

func (b *Bot) download(url string) ([]byte, error) {
	resp, err := b.httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) send(chatID int64, text string) {
	// Telegram caps messages at 4096 chars.
	if len(text) > 3900 {
		text = text[:3900] + "…"
	}
	_, _ = b.api.Send(tgbotapi.NewMessage(chatID, text))
}

func renderHint(h *hint.HintResult) string {
	var sb strings.Builder
	sb.WriteString("💡 ")
	sb.WriteString(h.Hint)
	if len(h.NextSteps) > 0 {
		sb.WriteString("\n\nДальше:")
		for _, s := range h.NextSteps {
			sb.WriteString("\n• " + s)
		}
	}
	return sb.String()
}

func renderSnapshot(s *hint.SnapshotResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]\n%s", s.TaskType, s.Output)
	if strings.TrimSpace(s.Code) != "" {
		sb.WriteString("\n\n" + s.Code)
	}
	if len(s.Checklist) > 0 {
		sb.WriteString("\n\nЧек-лист:")
		for _, c := range s.Checklist {
			sb.WriteString("\n• " + c)
		}
	}
	if len(s.Questions) > 0 {
		sb.WriteString("\n\nУточнить:")
		for _, q := range s.Questions {
			sb.WriteString("\n• " + q)
		}
	}
	if len(s.NextSteps) > 0 {
		sb.WriteString("\n\nДальше:")
		for _, n := range s.NextSteps {
			sb.WriteString("\n• " + n)
		}
	}
	return sb.String()
}
