// Package reconcile converges a Samba AD DNS backend toward a desired
// record or zone state by driving samba-tool.
//
// Every call is independent: credentials and targets are passed in, the
// backend is probed with "serverinfo", and exactly one mutating command is
// built and run. Dry-run suppresses the mutating command but never the
// probe.
package reconcile
