package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/spf13/pflag"

	"hint-gateway/api/internal/config"
	"hint-gateway/api/internal/handle"
	"hint-gateway/api/internal/hint"
	"hint-gateway/api/internal/license"
	"hint-gateway/api/internal/llm"
	"hint-gateway/api/internal/llm/gemini"
	"hint-gateway/api/internal/llm/openai"
	"hint-gateway/api/internal/store"
)

func main() {
	licFile := pflag.String("licenses", "", "override path to the license table file")
	pflag.Parse()

	cfg := config.Load()
	if *licFile != "" {
		cfg.LicenseFile = *licFile
	}

	licenses, err := license.LoadFile(cfg.LicenseFile)
	if err != nil {
		log.Fatalf("load licenses: %v", err)
	}
	log.Printf("loaded %d license entries from %s", licenses.Len(), cfg.LicenseFile)

	oa := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAISTTModel, cfg.OpenAITimeout)
	engines := llm.NewEngines(oa)
	if cfg.GeminiAPIKey != "" {
		engines = llm.NewEngines(oa, gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	svc := hint.NewService(licenses, oa, engines)

	var idem handle.ReplayStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("sql.Open: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		cancel()
		if err := store.InitSchema(context.Background(), db); err != nil {
			log.Fatalf("init idempotency schema: %v", err)
		}
		idem = store.NewIdempotencyRepo(db)
		log.Print("idempotency store enabled")
	}

	h := handle.New(svc, licenses, idem)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/v1/hint", h.Hint)
	mux.HandleFunc("/api/v1/hint/audio", h.HintAudio)
	mux.HandleFunc("/api/v1/license/status", h.LicenseStatus)

	addr := ":" + cfg.Port
	log.Printf("hint-gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
