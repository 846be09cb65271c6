package undofsm

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// document is the on-disk form of a Definition. States is kept as a node
// so that declaration order survives decoding.
type document struct {
	Initial StateID   `yaml:"initial"`
	States  yaml.Node `yaml:"states"`
}

type stateDocument struct {
	Transitions map[EventID]StateID `yaml:"transitions,omitempty"`
}

// ParseDefinition decodes a YAML (or JSON) definition document:
//
//	initial: green
//	states:
//	  green:
//	    transitions:
//	      next: yellow
//
// An empty or null document fails with ErrConfig.
func ParseDefinition(data []byte) (*Definition, error) {
	var def *Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	if def == nil {
		return nil, ErrConfig
	}
	return def, nil
}

// LoadDefinition reads and decodes a definition document from r
func LoadDefinition(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return ParseDefinition(data)
}

// LoadDefinitionFile reads and decodes the definition document at path
func LoadDefinitionFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Definition) UnmarshalYAML(value *yaml.Node) error {
	var doc document
	if err := value.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	def := NewDefinition().Initial(doc.Initial)

	states := resolveAlias(&doc.States)
	switch {
	case states.Kind == 0, states.ShortTag() == "!!null":
		// no states
	case states.Kind == yaml.MappingNode:
		pairs, err := mappingPairs(states)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			key, val := pairs[i], pairs[i+1]
			var sd stateDocument
			if err := val.Decode(&sd); err != nil {
				return fmt.Errorf("%w: state %q: %w", ErrInvalidDefinition, key.Value, err)
			}
			def.State(StateID(key.Value), WithTransitions(sd.Transitions))
		}
	default:
		return fmt.Errorf("%w: line %d: states must be a mapping", ErrInvalidDefinition, states.Line)
	}

	*d = *def
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

// mappingPairs flattens a mapping into key, value, key, value... with
// aliases followed and "<<" merge keys expanded in place. Explicit keys
// win over merged ones, and among merged sources the first one wins.
func mappingPairs(n *yaml.Node) ([]*yaml.Node, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: merge value must be a mapping", ErrInvalidDefinition, n.Line)
	}

	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := resolveAlias(n.Content[i]); !isMergeKey(key) {
			explicit[key.Value] = true
		}
	}

	var pairs []*yaml.Node
	merged := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := resolveAlias(n.Content[i]), n.Content[i+1]
		if !isMergeKey(key) {
			pairs = append(pairs, key, val)
			continue
		}

		sources := []*yaml.Node{resolveAlias(val)}
		if sources[0].Kind == yaml.SequenceNode {
			sources = sources[0].Content
		}
		for _, src := range sources {
			sub, err := mappingPairs(src)
			if err != nil {
				return nil, err
			}
			for j := 0; j+1 < len(sub); j += 2 {
				name := sub[j].Value
				if explicit[name] || merged[name] {
					continue
				}
				merged[name] = true
				pairs = append(pairs, sub[j], sub[j+1])
			}
		}
	}
	return pairs, nil
}

// MarshalYAML implements yaml.Marshaler, writing states in declaration order
func (d *Definition) MarshalYAML() (interface{}, error) {
	states := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range d.order {
		var val yaml.Node
		if err := val.Encode(stateDocument{Transitions: d.states[id].Transitions}); err != nil {
			return nil, fmt.Errorf("encode state %q: %w", id, err)
		}
		states.Content = append(states.Content, str(string(id)), &val)
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			str("initial"), str(string(d.initial)),
			str("states"), states,
		},
	}, nil
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
