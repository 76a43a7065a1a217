// Package config provides configuration management for the relief server.
//
// Configuration is loaded from defaults, then the YAML file at
// $RELIEF_CONFIG_PATH/relief.yml, then environment variables. Each
// attribute remembers which of those sources set it.
//
// # Key Configuration Options
//
//   - RELIEF_STORE_HOST, RELIEF_STORE_PORT, RELIEF_STORE_DATABASE: store location
//   - RELIEF_ANONYMOUS_USER: principal used before login
//   - RELIEF_ACCOUNTS_FILE: UI accounts and their store principals
//   - RELIEF_SESSION_TTL: session lifetime in seconds
//   - PORT: server listen port
//   - RELIEF_AUDIT_OUTPUT, RELIEF_AUDIT_APP_NAME, RELIEF_AUDIT_HOSTNAME: audit line destination and header
//   - RELIEF_AUDIT_USER, RELIEF_AUDIT_PASSWORD: principal saving audit entries to the store
//
// Secrets are never read from the file: RELIEF_SESSION_KEY signs session
// tokens and RELIEF_DATA_KEY decrypts stored principal passwords.
package config
