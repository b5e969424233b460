package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long queued event work may run after a signal.
const shutdownTimeout = 15 * time.Second

// Run connects to the gateway and blocks until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func (b *Bot) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b.Dispatcher.Start()
	b.startedAt = time.Now()
	if err := b.Session.Open(); err != nil {
		_ = b.Dispatcher.Stop(context.Background())
		return fmt.Errorf("error opening connection: %w", err)
	}

	b.logger.Info("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return b.Close(shutdownCtx)
}
