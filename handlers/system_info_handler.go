package handlers

import (
	"fmt"
	"runtime"
	"time"

	"discord-automod/bot"
	"discord-automod/config"
	"discord-automod/model"
	"discord-automod/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// hostStats is the subset of gopsutil output shown in the status embed.
type hostStats struct {
	Platform   string
	Kernel     string
	CPUCount   int
	CPUPercent float64
	MemPercent float64
	MemUsedMB  uint64
	MemTotalMB uint64
}

func readHostStats() hostStats {
	var st hostStats

	if info, err := host.Info(); err == nil {
		st.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		st.Kernel = info.KernelVersion
	}
	st.CPUCount, _ = cpu.Counts(true)
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		st.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.MemPercent = vm.UsedPercent
		st.MemUsedMB = vm.Used / 1024 / 1024
		st.MemTotalMB = vm.Total / 1024 / 1024
	}
	return st
}

// roleField shows a configured id as a mention, or "not set".
func roleField(id string) string {
	if !model.IsSet(id) {
		return "not set"
	}
	return fmt.Sprintf("<@&%s>", id)
}

func channelField(id string) string {
	if !model.IsSet(id) {
		return "not set"
	}
	return fmt.Sprintf("<#%s>", id)
}

func statusEmbed(cfg model.ModerationConfig, patterns int, st hostStats, latency, uptime time.Duration, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Automod status",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🛡️ Forbidden patterns", Value: fmt.Sprintf("%d", patterns), Inline: true},
			{Name: "🔒 Quarantine role", Value: roleField(cfg.QuarantineRoleID), Inline: true},
			{Name: "🎫 Restored role", Value: roleField(cfg.TimeoutRemoveRoleID), Inline: true},
			{Name: "📣 Notify channel", Value: channelField(cfg.NotifyChannelID), Inline: true},
			{Name: "📨 Appeal channel", Value: channelField(cfg.QuarantineChannelID), Inline: true},
			{Name: "⏪ Lookback", Value: fmt.Sprintf("default %dh, max %dh", cfg.DefaultLookbackHours, cfg.MaxLookbackHours), Inline: true},
			{Name: "⏳ Timeout", Value: fmt.Sprintf("default %dh, cap %dh", cfg.DefaultTimeoutHours, cfg.TimeoutCapHours), Inline: true},
			{Name: "🐢 Delete delay", Value: config.DescribeDelay(cfg.DeleteDelay), Inline: true},
			{Name: "💻 OS", Value: orDash(st.Platform), Inline: true},
			{Name: "🔧 Kernel", Value: orDash(st.Kernel), Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔥 CPU", Value: fmt.Sprintf("%d cores, %.1f%%", st.CPUCount, st.CPUPercent), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", st.MemPercent, st.MemUsedMB, st.MemTotalMB), Inline: true},
			{Name: "⏱️ WebSocket latency", Value: latency.String(), Inline: true},
			{Name: "🚀 Uptime", Value: uptime.Truncate(time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s・%s", cfg.FooterText, now.Format("15:04")),
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// HandleAutomodStatus replies with the loaded limits and host status.
func HandleAutomodStatus(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	var uptime time.Duration
	if !b.StartedAt().IsZero() {
		uptime = time.Since(b.StartedAt())
	}
	embed := statusEmbed(b.Engine.Config(), b.Engine.PatternCount(), readHostStats(),
		s.HeartbeatLatency(), uptime, time.Now())
	utils.SendEmbedResponse(s, i, embed)
}
