package session

import "strings"

// Command verbs. The verb is case-insensitive on the wire; arguments keep
// their case.
const (
	CmdUpload   = "UPLOAD"
	CmdDownload = "DOWNLOAD"
	CmdList     = "LIST"
	CmdExit     = "EXIT"
)

// Fixed protocol lines.
const (
	LoginPrompt = "Please login with username:password"
	LineReady   = "READY"
	LineEnd     = "END"
	LineGoodbye = "Goodbye!"
	LineNoFiles = "No files found"
)

// Response prefixes.
const (
	prefixSuccess = "SUCCESS"
	prefixFailed  = "FAILED"
	prefixSize    = "SIZE "
	prefixFiles   = "Files: "
)

func successLine(msg string) string {
	return prefixSuccess + ": " + msg
}

func failLine(reason string) string {
	return prefixFailed + ": " + reason
}

// command is one parsed client command line.
type command struct {
	verb string
	arg  string
}

// parseCommand splits a command line into its verb and optional argument.
func parseCommand(line string) command {
	verb, arg, _ := strings.Cut(line, " ")
	return command{verb: strings.ToUpper(verb), arg: arg}
}

// trimResponse strips the FAILED prefix from a response line so the reason
// can be surfaced on its own.
func trimResponse(line string) string {
	if rest, ok := strings.CutPrefix(line, prefixFailed+": "); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(line, prefixFailed+":"); ok {
		return rest
	}
	return line
}
