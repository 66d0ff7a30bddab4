package chain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
)

// Dialect names the text format a network uses to report redeclarations.
type Dialect string

const (
	// DialectGateway: "Class with hash 0x... is already declared."
	DialectGateway Dialect = "gateway"
	// DialectRPC: "... ClassHash(StarkFelt(\"0x...\")) ..."
	DialectRPC Dialect = "rpc"
)

// FailureClassifier recognises "class already declared" failures.
type FailureClassifier interface {
	// AlreadyDeclared reports whether failure text describes a redeclaration
	// and returns the existing class hash when it can be extracted.
	AlreadyDeclared(text string) (*felt.Felt, bool)
}

var (
	gatewayPattern = regexp.MustCompile(`Class with hash (0x[0-9a-fA-F]{1,64}) is already declared`)
	rpcPattern     = regexp.MustCompile(`ClassHash\(StarkFelt\(\\*"(0x[0-9a-fA-F]{1,64})\\*"\)\)`)
)

type patternClassifier struct {
	pattern *regexp.Regexp
	marker  func(string) bool
}

func (c patternClassifier) AlreadyDeclared(text string) (*felt.Felt, bool) {
	if !c.marker(text) {
		return nil, false
	}

	match := c.pattern.FindStringSubmatch(text)
	if match == nil {
		return nil, true
	}

	hash, err := new(felt.Felt).SetString(match[1])
	if err != nil {
		return nil, true
	}

	return hash, true
}

func NewClassifier(dialect Dialect) (FailureClassifier, error) {
	switch dialect {
	case DialectGateway:
		return patternClassifier{
			pattern: gatewayPattern,
			marker: func(text string) bool {
				return strings.Contains(text, "is already declared")
			},
		}, nil
	case DialectRPC, "":
		return patternClassifier{
			pattern: rpcPattern,
			marker: func(text string) bool {
				return strings.Contains(text, "ClassAlreadyDeclared") ||
					strings.Contains(text, "already declared") ||
					rpcPattern.MatchString(text)
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown declare error dialect '%s'", dialect)
	}
}
