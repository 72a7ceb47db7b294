package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/lojf/kidstrack/internal/db"
	"github.com/lojf/kidstrack/internal/events"
	"github.com/lojf/kidstrack/internal/web"
)

func main() {
	// Local dev convenience; a missing .env is fine.
	_ = godotenv.Load()

	if err := db.Init(getEnv("DB_PATH", "kidstrack.db")); err != nil {
		log.Fatalf("db init: %v", err)
	}

	var pub events.Publisher = events.LogPublisher{}
	if url := os.Getenv("EVENTS_WEBHOOK_URL"); url != "" {
		pub = events.NewWebhookPublisher(url)
	}

	r := web.Router(db.Conn(), pub)

	addr := getEnv("ADDR", ":8080")
	log.Printf("kidstrack listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
