package app

import "strings"

// Command はstudyhubバイナリのサブコマンド。
type Command string

const (
	// CommandServe はHTTP APIと /ws のチャット中継を起動する。
	CommandServe Command = "serve"
	// CommandMigrate は埋め込みスキーマをDATABASE_URLのPostgreSQLへ適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のserveの /health を叩く。distrolessのHEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

var commands = []struct {
	cmd  Command
	desc string
}{
	{CommandServe, "start the study group API and chat relay (default)"},
	{CommandMigrate, "apply the database schema"},
	{CommandHealthcheck, "probe /health of a running server"},
}

// ParseCommand は先頭の引数からサブコマンドを決める。
// 引数なしはserve。知らないサブコマンドもserveとして扱い、okにfalseを返す。
func ParseCommand(args []string) (cmd Command, ok bool) {
	if len(args) == 0 {
		return CommandServe, true
	}
	for _, c := range commands {
		if string(c.cmd) == args[0] {
			return c.cmd, true
		}
	}
	return CommandServe, false
}

// Usage はサブコマンドの一覧を1行ずつ返す。
func Usage() string {
	var b strings.Builder
	for _, c := range commands {
		b.WriteString(string(c.cmd))
		b.WriteString("\t")
		b.WriteString(c.desc)
		b.WriteString("\n")
	}
	return b.String()
}
