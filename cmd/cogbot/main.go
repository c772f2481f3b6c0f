// Command cogbot runs the Discord bot, its admin API and the settings
// maintenance commands.
package main

import "os"

func main() {
	os.Exit(Execute())
}
