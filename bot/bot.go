// Package bot hosts the settings store behind a discordgo prefix-command
// router. It renders replies and maps command errors to user messages; all
// settings logic lives in the cogbot package.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/CreativeUnicorns/cogbot"
	"github.com/CreativeUnicorns/cogbot/cache"
	"github.com/CreativeUnicorns/cogbot/config"
	"github.com/CreativeUnicorns/cogbot/format"
)

const (
	// CategorySearch gates the search command.
	CategorySearch = "search"
	// DisabledMessageTTL is how long a category-disabled notice stays visible.
	DisabledMessageTTL = 15 * time.Second
	statsCooldownKey   = "stats"
)

type commandFunc func(ctx context.Context, inv *invocation) error

type command struct {
	name    string
	aliases []string
	help    string
	run     commandFunc
}

// invocation is one parsed command message.
type invocation struct {
	msg       *discordgo.Message
	prefix    string
	name      string
	args      []string
	rest      string
	channelID int64
	guildID   int64
}

// Bot routes prefix commands to handlers.
type Bot struct {
	session  Session
	manager  *cogbot.Manager
	cfg      *config.Config
	logger   cogbot.Logger
	cooldown *cache.Cooldown
	searcher Searcher
	started  time.Time

	commands map[string]*command
	ordered  []*command
	removers []func()

	now   func() time.Time
	after func(time.Duration, func())
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l cogbot.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithCooldownCache stores stats cooldowns in c instead of a private memory cache.
func WithCooldownCache(c cogbot.Cache) Option {
	return func(b *Bot) {
		if c != nil {
			b.cooldown = cache.NewCooldown(c, b.cfg.StatsCooldown)
		}
	}
}

// WithSearcher replaces the default LinkSearcher.
func WithSearcher(s Searcher) Option {
	return func(b *Bot) {
		if s != nil {
			b.searcher = s
		}
	}
}

// New creates a Bot. It does not connect; call Start.
func New(session Session, manager *cogbot.Manager, cfg *config.Config, opts ...Option) *Bot {
	b := &Bot{
		session:  session,
		manager:  manager,
		cfg:      cfg,
		logger:   cogbot.NopLogger(),
		searcher: LinkSearcher{},
		started:  time.Now(),
		commands: make(map[string]*command),
		now:      time.Now,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cooldown == nil {
		b.cooldown = cache.NewCooldown(cache.NewMemoryCache(), cfg.StatsCooldown)
	}
	b.register()
	return b
}

func (b *Bot) register() {
	for _, c := range []*command{
		{name: "settings", aliases: []string{"setting", "config"}, help: "show or change which categories are enabled", run: b.settings},
		{name: "stats", help: "show statistics about the bot", run: b.stats},
		{name: "search", help: "search the configured site", run: b.search},
		{name: "help", help: "list commands", run: b.help},
	} {
		b.ordered = append(b.ordered, c)
		b.commands[c.name] = c
		for _, alias := range c.aliases {
			b.commands[alias] = c
		}
	}
}

// Start registers the event handlers and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.removers = append(b.removers,
		b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			if r.User != nil {
				b.logger.Info("Connected to Discord", "user", r.User.Username, "guilds", len(r.Guilds))
			}
		}),
		b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
			b.HandleMessage(ctx, m.Message)
		}),
	)

	// Handlers may run as soon as Open dispatches events.
	b.started = b.now()
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening discord connection: %w", err)
	}
	return nil
}

// Stop removes the handlers and closes the gateway connection.
func (b *Bot) Stop() error {
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil
	return b.session.Close()
}

// HandleMessage parses and runs one message. Messages from bots, messages
// without a prefix and unknown commands are ignored.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	inv, ok := b.parse(m)
	if !ok {
		return
	}
	cmd, ok := b.commands[inv.name]
	if !ok {
		b.logger.Debug("Unknown command", "command", inv.name, "channel", m.ChannelID)
		return
	}

	b.logger.Debug("Running command", "command", cmd.name, "user", m.Author.ID, "channel", m.ChannelID)
	if err := cmd.run(ctx, inv); err != nil {
		b.handleError(inv, err)
	}
}

func (b *Bot) parse(m *discordgo.Message) (*invocation, bool) {
	prefixes := append([]string(nil), b.cfg.General.Prefix...)
	// Longest prefix first so "!!" wins over "!".
	sort.SliceStable(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	for _, p := range prefixes {
		if p == "" || !strings.HasPrefix(m.Content, p) {
			continue
		}
		body := strings.TrimSpace(m.Content[len(p):])
		fields := strings.Fields(body)
		if len(fields) == 0 {
			return nil, false
		}
		rest := strings.TrimSpace(body[len(fields[0]):])
		return &invocation{
			msg:       m,
			prefix:    p,
			name:      strings.ToLower(fields[0]),
			args:      fields[1:],
			rest:      rest,
			channelID: parseID(m.ChannelID),
			guildID:   parseID(m.GuildID),
		}, true
	}
	return nil, false
}

// parseID converts a snowflake; empty or malformed ids become 0.
func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (b *Bot) reply(inv *invocation, content string) (*discordgo.Message, error) {
	msg, err := b.session.ChannelMessageSend(inv.msg.ChannelID, content)
	if err != nil {
		return nil, fmt.Errorf("error sending message to channel %s: %w", inv.msg.ChannelID, err)
	}
	return msg, nil
}

func (b *Bot) replyEmbed(inv *invocation, embed *discordgo.MessageEmbed) error {
	if _, err := b.session.ChannelMessageSendEmbed(inv.msg.ChannelID, embed); err != nil {
		return fmt.Errorf("error sending embed to channel %s: %w", inv.msg.ChannelID, err)
	}
	return nil
}

// requireGuildPermission checks that the command runs in a guild and that
// the author holds perm in the channel.
func (b *Bot) requireGuildPermission(inv *invocation, perm int64) error {
	if inv.guildID == 0 {
		return ErrGuildOnly
	}
	perms, err := b.session.UserChannelPermissions(inv.msg.Author.ID, inv.msg.ChannelID)
	if err != nil {
		return fmt.Errorf("error checking permissions: %w", err)
	}
	if perms&perm == 0 {
		return ErrMissingPermissions
	}
	return nil
}

// requireCategory is the capability check for gated commands.
func (b *Bot) requireCategory(inv *invocation, category string) error {
	allowed, err := b.manager.Allowed(inv.channelID, inv.guildID, category)
	if err != nil {
		return err
	}
	if !allowed {
		return &CategoryDisabledError{Category: category}
	}
	return nil
}

func (b *Bot) handleError(inv *invocation, err error) {
	var (
		cooldownErr *CooldownError
		disabledErr *CategoryDisabledError
		validErr    *cogbot.ValidationError
	)
	off := b.cfg.Discord.Indicators.Off

	var content string
	switch {
	case errors.Is(err, ErrGuildOnly):
		return
	case errors.As(err, &cooldownErr):
		content = fmt.Sprintf("You must wait %s to use this command!", format.Wait(cooldownErr.RetryAfter))
	case errors.As(err, &disabledErr):
		msg, sendErr := b.reply(inv, fmt.Sprintf("%s The category `%s` is disabled in this context.", off, disabledErr.Category))
		if sendErr != nil {
			b.logger.Warn("Failed to send reply", "error", sendErr)
			return
		}
		b.after(DisabledMessageTTL, func() {
			if delErr := b.session.ChannelMessageDelete(msg.ChannelID, msg.ID); delErr != nil {
				b.logger.Debug("Failed to delete message", "message", msg.ID, "error", delErr)
			}
		})
		return
	case errors.Is(err, ErrMissingPermissions):
		content = "You lack permission to use this command!"
	case errors.As(err, &validErr):
		content = validationMessage(off, validErr)
	case errors.Is(err, cogbot.ErrMissingDefault):
		b.logger.Warn("Capability check failed", "command", inv.name, "error", err)
		content = fmt.Sprintf("%s An internal error occurred while parsing this command. Please contact the developer.", off)
	default:
		b.logger.Error("Command failed", "command", inv.name, "error", err)
		content = fmt.Sprintf("%s Something went wrong while running this command.", off)
	}

	if _, sendErr := b.reply(inv, content); sendErr != nil {
		b.logger.Warn("Failed to send reply", "error", sendErr)
	}
}

func validationMessage(off string, err *cogbot.ValidationError) string {
	var sb strings.Builder
	sb.WriteString(off)
	switch {
	case errors.Is(err, cogbot.ErrArgCount):
		sb.WriteString(" You have to provide __two__ arguments! ")
	case errors.Is(err, cogbot.ErrInvalidCategory):
		sb.WriteString(" Invalid category! ")
	case errors.Is(err, cogbot.ErrInvalidMode):
		sb.WriteString(" Invalid mode! ")
	}
	sb.WriteString("You have to provide a category and a mode to edit. The categories are:\n")
	sb.WriteString(codeList(err.Categories))
	sb.WriteString("\nThe modes are:\n")
	modes := make([]string, len(err.Modes))
	for i, m := range err.Modes {
		modes[i] = string(m)
	}
	sb.WriteString(codeList(modes))
	return sb.String()
}

// codeList renders items as "`a`, `b`".
func codeList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "`" + strings.Join(items, "`, `") + "`"
}
