// Package sshutil runs samba-tool on a remote domain controller over SSH.
//
// The package has three parts:
//
//   - [Client]: one SSH connection with keepalive, dialed lazily
//   - [Executor]: a [runner.Executor] that runs each argument vector in its
//     own SSH session
//   - [SFTPLocator]: a [runner.Locator] that finds the tool on the remote
//     host over SFTP
//
// # Basic Usage
//
//	config, err := sshutil.LoadConfig("SAMBADNS_SSH_")
//	if err != nil {
//		return err
//	}
//
//	client, err := sshutil.NewClient(config)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	path, err := sshutil.NewSFTPLocator(client).Locate(ctx, "samba-tool")
//	if err != nil {
//		return err
//	}
//
//	r := runner.New(sshutil.NewExecutor(client))
//
// # Quoting
//
// SSH executes a single command string through the remote login shell.
// [Executor] quotes every token separately, so record data, zone names and
// passwords containing spaces or shell metacharacters reach samba-tool
// unchanged.
//
// # Host Keys
//
// When KnownHostsFile is set, host keys are verified against it. Without
// it, host key verification is disabled and a warning is logged.
package sshutil
