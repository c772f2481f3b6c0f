package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the subset of *discordgo.Session the bot uses, so that tests
// can substitute a fake.
type Session interface {
	// Open creates a websocket connection to Discord
	Open() error

	// Close closes the websocket connection to Discord
	Close() error

	// AddHandler registers a discordgo event handler and returns its remover.
	AddHandler(handler any) func()

	ChannelMessageSend(
		channelID string,
		content string,
		opts ...discordgo.RequestOption,
	) (*discordgo.Message, error)

	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		opts ...discordgo.RequestOption,
	) (*discordgo.Message, error)

	ChannelMessageDelete(
		channelID string,
		messageID string,
		opts ...discordgo.RequestOption,
	) error

	// UserChannelPermissions returns the permission bits of a user in a channel.
	UserChannelPermissions(userID, channelID string) (int64, error)

	// HeartbeatLatency is the latency of the last gateway heartbeat.
	HeartbeatLatency() time.Duration

	// GuildStats returns the number of guilds the bot is in and the sum of
	// their member counts.
	GuildStats() (guilds int, members int)

	// BotUser returns the bot's own user, or nil before the Ready event.
	BotUser() *discordgo.User
}

// DiscordSession implements Session on top of *discordgo.Session.
type DiscordSession struct {
	session *discordgo.Session
	logger  *slog.Logger
}

// NewSession creates a discordgo session for a bot token with the intents
// prefix commands need.
func NewSession(token string, logger *slog.Logger) (*DiscordSession, error) {
	disc, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	disc.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	disc.StateEnabled = true
	disc.LogLevel = discordgo.LogInformational

	return &DiscordSession{session: disc, logger: logger}, nil
}

func (d *DiscordSession) Open() error {
	return d.session.Open()
}

func (d *DiscordSession) Close() error {
	return d.session.Close()
}

func (d *DiscordSession) AddHandler(handler any) func() {
	return d.session.AddHandler(handler)
}

func (d *DiscordSession) ChannelMessageSend(
	channelID string,
	content string,
	opts ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	return d.session.ChannelMessageSend(channelID, content, opts...)
}

func (d *DiscordSession) ChannelMessageSendEmbed(
	channelID string,
	embed *discordgo.MessageEmbed,
	opts ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	return d.session.ChannelMessageSendEmbed(channelID, embed, opts...)
}

func (d *DiscordSession) ChannelMessageDelete(
	channelID string,
	messageID string,
	opts ...discordgo.RequestOption,
) error {
	return d.session.ChannelMessageDelete(channelID, messageID, opts...)
}

// UserChannelPermissions computes permissions from the state cache and falls
// back to the REST API when the guild or member is not cached.
func (d *DiscordSession) UserChannelPermissions(userID, channelID string) (int64, error) {
	perms, err := d.session.State.UserChannelPermissions(userID, channelID)
	if err == nil {
		return perms, nil
	}
	d.logger.Debug("state permission lookup failed, using API", "error", err)
	return d.session.UserChannelPermissions(userID, channelID)
}

func (d *DiscordSession) HeartbeatLatency() time.Duration {
	return d.session.HeartbeatLatency()
}

func (d *DiscordSession) GuildStats() (int, int) {
	d.session.State.RLock()
	defer d.session.State.RUnlock()

	members := 0
	for _, g := range d.session.State.Guilds {
		members += g.MemberCount
	}
	return len(d.session.State.Guilds), members
}

func (d *DiscordSession) BotUser() *discordgo.User {
	if d.session.State == nil {
		return nil
	}
	return d.session.State.User
}
