package httpserver

import (
	"log"
	"net/http"
)

// StartHTTP serves the health probe for processes whose main work happens
// elsewhere (the Telegram bot). Blocks until the listener fails.
func StartHTTP(addr, healthzBody string) error {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(healthzBody))
	})
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hint-gateway bot"))
	})
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
