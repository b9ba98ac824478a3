// Package config loads the service configuration from config.yaml.
//
// Config fields:
//   - Server.HTTPPort          — port for the REST API and WebSocket hub (default 8080)
//   - Server.BroadcastInterval — WebSocket push cadence (default 5s)
//   - Server.Audits.TTL        — how long a completed audit stays cached (default 1h)
//   - Log.Level                — debug | info | warn | error (default info, hot-reloadable)
//   - Credentials.PSIKeyEnv    — env var holding a PageSpeed API key (optional)
//   - Credentials.GitHubTokenEnv — env var holding a GitHub token (optional)
//
// Load(path) applies defaults before unmarshalling, then validates. Watch
// re-loads the file on change for runtime log-level adjustment.
package config
