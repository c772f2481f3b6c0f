// Package cogbot provides the settings core of a Discord bot: per-channel and
// per-guild category toggles resolved against configured defaults, and a
// load-or-create persistence contract for named in-memory caches.
//
// The Manager owns the settings table. Storage backends (file, SQLite,
// PostgreSQL, Redis) live in the storage package; the Discord command host
// lives in the bot package.
package cogbot
