package enforcement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultFetchLimit  = 100
	DefaultDeleteDelay = 200 * time.Millisecond

	summaryLimit = 200
	emptyMarker  = "*empty*"
)

// PurgeScanner deletes a user's recent messages across a guild's text
// channels. Channels are walked one at a time and every deletion is followed
// by a fixed pause to keep under the platform rate limit.
type PurgeScanner struct {
	store       MessageStore
	maxHours    int
	fetchLimit  int
	deleteDelay time.Duration
	now         func() time.Time
	pause       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

// ClampHours bounds hours to [0, limit].
func ClampHours(hours, limit int) int {
	return min(max(hours, 0), max(limit, 0))
}

// Purge removes messages by targetID created within the last lookbackHours.
// Each channel contributes at most fetchLimit messages. Channels the agent
// cannot read or moderate are skipped; any other failure ends the purge.
func (p *PurgeScanner) Purge(ctx context.Context, guildID, targetID string, lookbackHours int) ([]DeletionLogEntry, error) {
	hours := ClampHours(lookbackHours, p.maxHours)
	cutoff := p.now().Add(-time.Duration(hours) * time.Hour)
	log := p.logger.With(zap.String("guild_id", guildID), zap.String("user_id", targetID))

	channels, err := p.store.TextChannels(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list text channels: %w", err)
	}

	var deleted []DeletionLogEntry
	for _, channel := range channels {
		entries, err := p.purgeChannel(ctx, channel, targetID, cutoff, log)
		deleted = append(deleted, entries...)
		if err == nil {
			continue
		}
		if IsPermissionDenied(err) {
			log.Debug("Skipping inaccessible channel", zap.String("channel_id", channel.ID), zap.Error(err))
			continue
		}
		return deleted, fmt.Errorf("purge channel #%s: %w", channel.Name, err)
	}

	log.Info("Purge finished", zap.Int("deleted", len(deleted)), zap.Int("hours", hours))
	return deleted, nil
}

func (p *PurgeScanner) purgeChannel(ctx context.Context, channel *Channel, targetID string, cutoff time.Time, log *zap.Logger) ([]DeletionLogEntry, error) {
	messages, err := p.store.ChannelHistory(ctx, channel.ID, cutoff, p.fetchLimit)
	if err != nil {
		return nil, err
	}

	var deleted []DeletionLogEntry
	for _, msg := range messages {
		if msg.Author.ID != targetID || msg.Type == MessageTypeMemberJoin {
			continue
		}

		summary := summarizeMessage(msg)
		if err := p.store.DeleteMessage(ctx, channel.ID, msg.ID); err != nil {
			if IsNotFound(err) {
				// Already gone; nothing to log.
				continue
			}
			return deleted, err
		}
		log.Info("Deleted message",
			zap.String("channel_id", channel.ID),
			zap.String("channel", channel.Name),
			zap.String("message_id", msg.ID),
			zap.String("content", summary))

		deleted = append(deleted, DeletionLogEntry{
			ChannelID:   channel.ID,
			ChannelName: channel.Name,
			Summary:     summary,
		})

		if err := p.pause(ctx, p.deleteDelay); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// summarizeMessage builds the log line for a deleted message: its trimmed text
// cut to 200 characters, followed by one marker per attachment.
func summarizeMessage(msg *Message) string {
	content := strings.TrimSpace(msg.Content)
	if runes := []rune(content); len(runes) > summaryLimit {
		content = string(runes[:summaryLimit])
	}
	if content == "" {
		content = emptyMarker
	}

	var b strings.Builder
	b.WriteString(content)
	for _, a := range msg.Attachments {
		b.WriteString(" [attachment: ")
		b.WriteString(a.URL)
		b.WriteString("]")
	}
	return b.String()
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
