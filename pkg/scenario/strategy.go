package scenario

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rcxwhiz/unittest-scenarios/pkg/util"
)

// CheckStrategy selects how a scenario's final state is verified.
type CheckStrategy string

const (
	// NoCheck skips final-state verification entirely.
	NoCheck CheckStrategy = "none"
	// NamesOnly compares the sets of relative file names with no content
	// inspection.
	NamesOnly CheckStrategy = "file_names"
	// FullContents compares the working directory against the final state
	// recursively, content included. This is the default.
	FullContents CheckStrategy = "full_contents"
)

var strategyToString = map[CheckStrategy]string{
	NoCheck:      "none",
	NamesOnly:    "file_names",
	FullContents: "full_contents",
}

var stringToStrategy map[string]CheckStrategy

func init() {
	stringToStrategy = util.InvertMap(strategyToString)
}

func (s CheckStrategy) String() string {
	if str, ok := strategyToString[s]; ok {
		return str
	}
	return fmt.Sprintf("unknown_check_strategy(%s)", string(s))
}

func ParseCheckStrategy(s string) (CheckStrategy, error) {
	if strategy, ok := stringToStrategy[s]; ok {
		return strategy, nil
	}
	return "", fmt.Errorf("invalid check strategy: %q. Must be 'none', 'file_names', or 'full_contents'", s)
}

// MarshalJSON implements the json.Marshaler interface for CheckStrategy.
func (s CheckStrategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for CheckStrategy.
func (s *CheckStrategy) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("check strategy should be a string, got %s", data)
	}
	strategy, err := ParseCheckStrategy(str)
	if err != nil {
		return err
	}
	*s = strategy
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for CheckStrategy.
func (s CheckStrategy) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for CheckStrategy.
func (s *CheckStrategy) UnmarshalYAML(node *yaml.Node) error {
	var str string
	if err := node.Decode(&str); err != nil {
		return err
	}
	strategy, err := ParseCheckStrategy(str)
	if err != nil {
		return err
	}
	*s = strategy
	return nil
}
