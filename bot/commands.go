package bot

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/CreativeUnicorns/cogbot"
	"github.com/CreativeUnicorns/cogbot/format"
)

const defaultSettingsHelp = "Use `{prefix}settings` to see the current configuration, " +
	"`{prefix}settings channel <category> <on|off|reset>` to change it for this channel and " +
	"`{prefix}settings server <category> <on|off|reset>` to change it for the whole server.\n" +
	"A channel value overrides the server value, which overrides the default.\n" +
	"The categories are: {categories}"

var (
	channelScopeNames = []string{"channel", "c", "ch", "local"}
	serverScopeNames  = []string{"server", "s", "srv", "global"}
	infoNames         = []string{"info", "?", "help"}
)

func oneOf(s string, names []string) bool {
	for _, n := range names {
		if s == n {
			return true
		}
	}
	return false
}

// settings implements "settings", "settings channel|server <category> <mode>"
// and "settings info". All forms require Manage Channels.
func (b *Bot) settings(ctx context.Context, inv *invocation) error {
	if err := b.requireGuildPermission(inv, discordgo.PermissionManageChannels); err != nil {
		return err
	}
	if len(inv.args) == 0 {
		return b.settingsView(inv)
	}

	sub := strings.ToLower(inv.args[0])
	switch {
	case oneOf(sub, channelScopeNames):
		return b.settingsWrite(ctx, inv, inv.channelID, "channel")
	case oneOf(sub, serverScopeNames):
		return b.settingsWrite(ctx, inv, inv.guildID, "server")
	case oneOf(sub, infoNames):
		_, err := b.reply(inv, b.settingsHelp(inv.prefix))
		return err
	default:
		return b.settingsView(inv)
	}
}

func (b *Bot) settingsView(inv *invocation) error {
	views, err := b.manager.Effective(inv.channelID, inv.guildID)
	if err != nil {
		return err
	}

	ind := b.cfg.Discord.Indicators
	embed := &discordgo.MessageEmbed{
		Title:       "Settings",
		Description: fmt.Sprintf("Config for <#%s>", inv.msg.ChannelID),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Tip: If you want to change the settings, you need to provide arguments. Type \"%ssettings info\" for more info.", inv.prefix),
		},
	}
	for _, v := range views {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("**Category `%s`:**", v.Category),
			Value: fmt.Sprintf("Server: %s Channel: %s Effective: %s", ind.For(v.Guild), ind.For(v.Channel), ind.For(v.Effective)),
		})
	}
	return b.replyEmbed(inv, embed)
}

func (b *Bot) settingsWrite(_ context.Context, inv *invocation, scopeID int64, scopeWord string) error {
	category, mode, err := b.manager.ParseWriteArgs(inv.args[1:])
	if err != nil {
		return err
	}
	result, err := b.manager.Write(scopeID, category, mode)
	if err != nil {
		return err
	}
	b.logger.Info("Settings changed",
		"scope", scopeWord, "scope_id", scopeID, "category", category, "result", result.String(), "user", inv.msg.Author.ID)

	var content string
	switch result {
	case cogbot.Enabled:
		content = fmt.Sprintf("category `%s` was turned **on** for this %s.", category, scopeWord)
	case cogbot.Disabled:
		content = fmt.Sprintf("category `%s` was turned **off** for this %s.", category, scopeWord)
	case cogbot.Cleared:
		content = fmt.Sprintf("category `%s` was **unset** for this %s.", category, scopeWord)
	default:
		content = fmt.Sprintf("category `%s` was not yet set for this %s.", category, scopeWord)
	}
	_, err = b.reply(inv, content)
	return err
}

func (b *Bot) settingsHelp(prefix string) string {
	text := b.cfg.Discord.Settings.Help
	if text == "" {
		text = defaultSettingsHelp
	}
	return strings.NewReplacer(
		"{prefix}", prefix,
		"{categories}", codeList(b.manager.Categories()),
	).Replace(text)
}

// stats reports uptime, latency and reach. It shares one cooldown window
// across all users.
func (b *Bot) stats(ctx context.Context, inv *invocation) error {
	left, err := b.cooldown.Try(ctx, statsCooldownKey)
	if err != nil {
		b.logger.Warn("Cooldown check failed", "command", "stats", "error", err)
	} else if left > 0 {
		return &CooldownError{Command: "stats", RetryAfter: left}
	}

	name := "the bot"
	if u := b.session.BotUser(); u != nil {
		name = u.Username
	}
	latency := b.session.HeartbeatLatency()
	guilds, members := b.session.GuildStats()

	embed := &discordgo.MessageEmbed{
		Title: format.Genitive(name) + " stats",
		Color: latencyColor(latency),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Go Version:", Value: runtime.Version(), Inline: true},
			{Name: "discordgo Version:", Value: discordgo.VERSION, Inline: true},
			{Name: "Latency:", Value: fmt.Sprintf("%dms", latency.Milliseconds()), Inline: true},
			{Name: "Uptime:", Value: format.Uptime(b.now().Sub(b.started)), Inline: true},
			{Name: "Guild Count:", Value: fmt.Sprint(guilds), Inline: true},
			{Name: "Member Count:", Value: fmt.Sprint(members), Inline: true},
			{Name: "Commands:", Value: fmt.Sprint(len(b.ordered)), Inline: true},
		},
	}
	if repo := b.cfg.General.GithubRepo; repo != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Github:", Value: repo, Inline: true})
	}
	if dev := b.cfg.General.DeveloperID; dev != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Developer:", Value: "<@" + dev + ">", Inline: true})
	}
	return b.replyEmbed(inv, embed)
}

// latencyColor fades from green at 0ms to red at 500ms and above.
func latencyColor(latency time.Duration) int {
	red := int(format.MapValues(float64(latency.Milliseconds()), 0, 500, 0, 255))
	return red<<16 | (255-red)<<8
}

// search links the first result for the query on the configured site. It is
// gated by the search category.
func (b *Bot) search(ctx context.Context, inv *invocation) error {
	if err := b.requireCategory(inv, CategorySearch); err != nil {
		return err
	}
	if inv.rest == "" {
		_, err := b.reply(inv, fmt.Sprintf("Usage: `%ssearch <query>`", inv.prefix))
		return err
	}

	site := b.cfg.Search.Site
	link, err := b.searcher.Search(ctx, inv.rest, site)
	if err != nil {
		return fmt.Errorf("search %q: %w", inv.rest, err)
	}
	if link == "" {
		_, err := b.reply(inv, fmt.Sprintf("%s No results for `%s` on *%s*.", b.cfg.Discord.Indicators.Off, inv.rest, site))
		return err
	}
	return b.replyEmbed(inv, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s result for `%s` on *%s*:", format.Ordinal(1), inv.rest, site),
		Description: link,
		URL:         link,
	})
}

func (b *Bot) help(_ context.Context, inv *invocation) error {
	var sb strings.Builder
	sb.WriteString("**Commands:**\n")
	for _, c := range b.ordered {
		fmt.Fprintf(&sb, "`%s%s`", inv.prefix, c.name)
		if len(c.aliases) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(c.aliases, ", "))
		}
		fmt.Fprintf(&sb, ": %s\n", c.help)
	}
	_, err := b.reply(inv, strings.TrimRight(sb.String(), "\n"))
	return err
}
