package services

import (
	"context"
	"log"

	"github.com/lojf/kidstrack/internal/events"
)

// publish dispatches best-effort: a failed or missing bus never affects the
// already-committed state change.
func publish(ctx context.Context, pub events.Publisher, ev events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Dispatch(ctx, ev); err != nil {
		log.Printf("event dispatch failed: kind=%s id=%s err=%v", ev.Kind, ev.ID, err)
	}
}
