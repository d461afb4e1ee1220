package main

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hint-gateway/api/internal/config"
	"hint-gateway/api/internal/hint"
	"hint-gateway/api/internal/httpserver"
	"hint-gateway/api/internal/license"
	"hint-gateway/api/internal/llm"
	"hint-gateway/api/internal/llm/gemini"
	"hint-gateway/api/internal/llm/openai"
	"hint-gateway/api/internal/telegram"
)

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}

func main() {
	tgToken := mustEnv("TELEGRAM_BOT_TOKEN")
	webhookURL := mustEnv("WEBHOOK_URL")
	botLicense := mustEnv("BOT_LICENSE_KEY")

	cfg := config.Load()

	licenses, err := license.LoadFile(cfg.LicenseFile)
	if err != nil {
		log.Fatalf("load licenses: %v", err)
	}

	oa := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAISTTModel, cfg.OpenAITimeout)
	engines := llm.NewEngines(oa)
	if cfg.GeminiAPIKey != "" {
		engines = llm.NewEngines(oa, gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	svc := hint.NewService(licenses, oa, engines)

	api, err := tgbotapi.NewBotAPI(tgToken)
	if err != nil {
		log.Fatal(err)
	}
	api.Debug = false

	path := "/webhook/" + shortHash(tgToken)
	public := strings.TrimRight(webhookURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := api.Request(wh); err != nil {
		log.Fatal(err)
	}

	updates := api.ListenForWebhook(path)
	bot := telegram.New(api, svc, botLicense)
	go bot.Run(updates)

	log.Printf("bot webhook=%s", public)
	log.Fatal(httpserver.StartHTTP("0.0.0.0:"+cfg.Port, "ok"))
}

func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:16]
}
