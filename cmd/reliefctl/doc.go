// Command reliefctl runs and administers the relief server.
//
// relief is a role-gated data-access layer over the disaster-relief
// schema. Each UI account maps to a PostgreSQL principal whose grants are
// the real enforcement boundary.
//
// # Quick Start
//
//	# Generate keys for session tokens and encrypted principal passwords
//	export RELIEF_SESSION_KEY="$(reliefctl data-key generate)"
//	export RELIEF_DATA_KEY="$(reliefctl data-key generate)"
//
//	# Create the schema with an administrative connection
//	DATABASE_URL=postgres://postgres@localhost/relief?sslmode=disable reliefctl db migrate
//
//	# Check the accounts file and start the server
//	reliefctl account list
//	reliefctl server
//
// # Environment Variables
//
//   - DATABASE_URL: administrative connection used by db commands
//   - RELIEF_CONFIG_PATH: directory holding relief.yml (default /etc/relief)
//   - RELIEF_SESSION_KEY: base64 key signing session tokens (required by server)
//   - RELIEF_DATA_KEY: base64 key decrypting principal passwords in the accounts file
//   - RELIEF_AUDIT_USER, RELIEF_AUDIT_PASSWORD: principal saving audit entries to audit_messages
//   - PRETTY, DEBUG: console logging and debug level
package main
