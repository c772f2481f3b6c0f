package bot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

// fakeSession implements Session and records everything the bot sends.
type fakeSession struct {
	mu       sync.Mutex
	sent     []sentMessage
	deleted  []string
	perms    map[string]int64
	handlers []any
	opened   bool
	closed   bool
	openErr  error
	onOpen   func() // runs inside Open, like discordgo dispatching early events
	sendErr  error
	nextID   int
	user     *discordgo.User
	latency  time.Duration
	guilds   int
	members  int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		perms:   make(map[string]int64),
		user:    &discordgo.User{ID: "999", Username: "Cogs", Bot: true},
		latency: 42 * time.Millisecond,
		guilds:  3,
		members: 120,
	}
}

func (f *fakeSession) Open() error {
	f.mu.Lock()
	if f.openErr != nil {
		f.mu.Unlock()
		return f.openErr
	}
	f.opened = true
	onOpen := f.onOpen
	f.mu.Unlock()

	if onOpen != nil {
		onOpen()
	}
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) AddHandler(handler any) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handler)
	idx := len(f.handlers) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handlers[idx] = nil
	}
}

func (f *fakeSession) record(m sentMessage) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, m)
	return &discordgo.Message{ID: fmt.Sprint(f.nextID), ChannelID: m.ChannelID, Content: m.Content}, nil
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(sentMessage{ChannelID: channelID, Content: content})
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(sentMessage{ChannelID: channelID, Embed: embed})
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakeSession) UserChannelPermissions(userID, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	perms, ok := f.perms[userID]
	if !ok {
		return 0, errors.New("member not found")
	}
	return perms, nil
}

func (f *fakeSession) HeartbeatLatency() time.Duration { return f.latency }

func (f *fakeSession) GuildStats() (int, int) { return f.guilds, f.members }

func (f *fakeSession) BotUser() *discordgo.User { return f.user }

func (f *fakeSession) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeSession) Last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSession) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
