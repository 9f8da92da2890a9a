// Package parser turns raw input lines into commands.
//
// The grammar is deliberately tiny: tokens are split on whitespace only, so
// there is no quoting or escaping. `<` and `>` are redirection operators when
// they stand alone as a token, and `&` marks a background command when it is
// the last token of the line. Anything else is a literal argument.
package parser

import (
	"errors"
	"strings"
)

const (
	// MaxLineLength is the longest accepted input line, in characters.
	MaxLineLength = 2048
	// MaxTokens is the most tokens a single line may contain.
	MaxTokens = 512
)

var (
	ErrLineTooLong   = errors.New("command line too long (max 2048 characters)")
	ErrTooManyTokens = errors.New("too many arguments (max 512)")
	ErrMissingInput  = errors.New("missing filename for input redirection")
	ErrMissingOutput = errors.New("missing filename for output redirection")
	ErrNoCommand     = errors.New("no command given")
)

// Command is one parsed input line. It is built fresh per line and consumed
// by a single dispatch.
type Command struct {
	// Program is the command name. Args[0] always equals Program, following
	// the argv convention.
	Program    string
	Args       []string
	InputFile  string
	OutputFile string
	Background bool
}

// Tokenize splits a raw line on spaces, tabs and newlines, enforcing the
// line-length and token-count limits. An empty result is a valid outcome for
// a blank line.
func Tokenize(line string) ([]string, error) {
	if len(line) > MaxLineLength {
		return nil, ErrLineTooLong
	}
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
	if len(tokens) > MaxTokens {
		return nil, ErrTooManyTokens
	}
	return tokens, nil
}

// Parse consumes a raw line and produces a Command.
//
// A blank line, or one whose first non-blank character is '#', is not a
// command at all: Parse returns (nil, nil) and the caller must not dispatch.
func Parse(line string) (*Command, error) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || trimmed == "\n" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	cmd := &Command{}
	for i := 0; i < len(tokens); i++ {
		switch tok := tokens[i]; {
		case tok == "<":
			if i+1 >= len(tokens) {
				return nil, ErrMissingInput
			}
			// Specified twice, the later target wins.
			cmd.InputFile = tokens[i+1]
			i++
		case tok == ">":
			if i+1 >= len(tokens) {
				return nil, ErrMissingOutput
			}
			cmd.OutputFile = tokens[i+1]
			i++
		case tok == "&" && i == len(tokens)-1:
			cmd.Background = true
		default:
			// `&` mid-line, or glued forms like `<file`, are literal args.
			cmd.Args = append(cmd.Args, tok)
		}
	}

	if len(cmd.Args) == 0 {
		return nil, ErrNoCommand
	}
	cmd.Program = cmd.Args[0]
	return cmd, nil
}
