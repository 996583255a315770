// Package conversation provides command parsing and user notification
// implementations for the terminal command surface.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*KeywordParser)(nil)

// KeywordParser matches user input to commands using keywords and
// simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex *regexp.Regexp
	cmd   domain.CommandType
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(next|done|advance|n)$`), domain.CommandAdvance},
		{regexp.MustCompile(`(?i)^(pause|brb|wait|hold|p)$`), domain.CommandPause},
		{regexp.MustCompile(`(?i)^(resume|back|continue|unpause|go)$`), domain.CommandResume},
		{regexp.MustCompile(`(?i)^(repeat|again|what\??|r|re)$`), domain.CommandRepeat},
		{regexp.MustCompile(`(?i)^(status|where|progress|info)$`), domain.CommandStatus},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.CommandHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|stop|q)$`), domain.CommandQuit},
	}
	return p
}

// Parse converts user input into a command. Unrecognized input becomes
// CommandUnknown with the raw text kept as payload.
func (p *KeywordParser) Parse(input string) domain.Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.Command{Type: domain.CommandUnknown}
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.cmd)
			return domain.Command{Type: rule.cmd}
		}
	}

	p.log.Debug("no match for %q", trimmed)
	return domain.Command{Type: domain.CommandUnknown, Payload: trimmed}
}
