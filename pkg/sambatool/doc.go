// Package sambatool builds command lines for the "samba-tool dns" family of
// subcommands.
//
// A [Command] is an immutable list of string tokens:
//
//	<tool> dns <action> <server> [<zone>] [<name>] [<type>] [<data>] --username=<u> --password=<p>
//
// Optional operands are omitted when empty. The credential flags are always
// the last two tokens. Building a command has no side effects; executing it
// is the job of package runner.
//
//	b := sambatool.Builder{
//		ToolPath:    "/usr/bin/samba-tool",
//		Credentials: sambatool.NewCredentials("administrator", "secret"),
//	}
//	cmd, err := b.Build(sambatool.ActionAdd, sambatool.Operands{
//		Server: "dc1",
//		Zone:   "example.com",
//		Name:   "host1",
//		Type:   "A",
//		Data:   "10.0.0.5",
//	})
package sambatool
