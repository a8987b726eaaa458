// Package cli provides the interactive diary shell.
//
// App wires configuration, the local store and the entry service, and runs a
// line oriented REPL over them. The same command handlers back the one-shot
// subcommands of cmd/diary (list, search, import, export, info).
//
// Commands:
//   - list [n]                  newest entries first
//   - new [title]               create an entry, then prompt for its body
//   - show <id>                 print one entry
//   - set <id> <field> <value>  change a field; saved after a short pause
//   - edit <id>                 replace the body of an entry
//   - delete <id>               remove an entry (asks for confirmation)
//   - search <term>             match title and body
//   - import <file>             load a JSON export
//   - export [format] [dir]     write json, csv or md
//   - info, save, reload, help, exit
package cli
