package cogbot_test

import (
	"context"
	"fmt"
	"log"

	"github.com/CreativeUnicorns/cogbot"
	"github.com/CreativeUnicorns/cogbot/storage"
)

func Example() {
	store := storage.NewMemoryStorage()
	defer store.Close()

	mgr, err := cogbot.New(
		cogbot.WithStorage(store),
		cogbot.WithLogger(cogbot.NopLogger()),
		cogbot.WithCategories("search", "music"),
		cogbot.WithDefaults(cogbot.Defaults{"search": cogbot.On, "music": cogbot.Off}),
	)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	ctx := context.Background()
	mgr.Load(ctx)

	const guildID, channelID = 100, 200

	// The server turns music on, one channel turns search off.
	if _, err := mgr.Write(guildID, "music", cogbot.ModeOn); err != nil {
		log.Fatalf("Failed to write setting: %v", err)
	}
	if _, err := mgr.Write(channelID, "search", cogbot.ModeOff); err != nil {
		log.Fatalf("Failed to write setting: %v", err)
	}

	views, err := mgr.Effective(channelID, guildID)
	if err != nil {
		log.Fatalf("Failed to resolve settings: %v", err)
	}
	for _, v := range views {
		fmt.Printf("%s: server=%s channel=%s effective=%s\n", v.Category, v.Guild, v.Channel, v.Effective)
	}

	res, _ := mgr.Write(channelID, "search", cogbot.ModeReset)
	fmt.Println("reset:", res)
	res, _ = mgr.Write(channelID, "search", cogbot.ModeReset)
	fmt.Println("reset again:", res)

	if err := mgr.Save(ctx); err != nil {
		log.Fatalf("Failed to save settings: %v", err)
	}
	data, _ := store.Read(ctx, cogbot.DefaultCacheName)
	fmt.Println(string(data))

	// Output:
	// search: server=unset channel=off effective=off
	// music: server=on channel=unset effective=on
	// reset: cleared
	// reset again: nothing to reset
	// {"100":{"music":"on"},"200":{}}
}
