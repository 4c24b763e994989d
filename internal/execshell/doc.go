// Package execshell runs shell commands as child processes and routes their
// combined output into caller-provided logging sinks.
//
// ShellCommandExecutor validates the requested output handling policy before
// any process is spawned, announces the command through the sink, and delegates
// process execution to a ShellProcessRunner so hosts and tests can substitute
// the operating system boundary.
package execshell
