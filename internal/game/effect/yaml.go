package effect

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// UnmarshalYAML decodes a keyed effect mapping such as
//
//	affection: {mika: 10}
//	money: -50
//	message: "She smiles."
//
// into ops, preserving key order. Unknown keys are an error.
func (e *Effect) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: effect must be a mapping", node.Line)
	}
	var out Effect
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		ops, err := decodeOp(key.Value, val)
		if err != nil {
			return fmt.Errorf("line %d: effect %q: %w", key.Line, key.Value, err)
		}
		out = append(out, ops...)
	}
	*e = out
	return nil
}

func decodeOp(kind string, val *yaml.Node) ([]Op, error) {
	switch kind {
	case "affection":
		pairs, err := intPairs(val)
		if err != nil {
			return nil, err
		}
		out := make([]Op, 0, len(pairs))
		for _, kv := range pairs {
			out = append(out, AffectionDelta{Character: kv.key, Delta: kv.value})
		}
		return out, nil
	case "stats":
		pairs, err := intPairs(val)
		if err != nil {
			return nil, err
		}
		out := make([]Op, 0, len(pairs))
		for _, kv := range pairs {
			st, err := player.ParseStat(kv.key)
			if err != nil {
				return nil, err
			}
			out = append(out, StatDelta{Stat: st, Delta: kv.value})
		}
		return out, nil
	case "grant_item", "remove_item":
		items, err := itemCounts(val)
		if err != nil {
			return nil, err
		}
		out := make([]Op, 0, len(items))
		for _, kv := range items {
			if kind == "grant_item" {
				out = append(out, GrantItem{Item: kv.key, Count: kv.value})
			} else {
				out = append(out, RemoveItem{Item: kv.key, Count: kv.value})
			}
		}
		return out, nil
	case "money":
		var n int
		if err := val.Decode(&n); err != nil {
			return nil, err
		}
		return []Op{MoneyDelta{Delta: n}}, nil
	case "set_flag":
		if val.Kind == yaml.ScalarNode {
			return []Op{SetFlag{Name: val.Value, Value: true}}, nil
		}
		if val.Kind != yaml.MappingNode {
			return nil, errors.New("set_flag must be a name or a name: bool mapping")
		}
		var out []Op
		for i := 0; i+1 < len(val.Content); i += 2 {
			var v bool
			if err := val.Content[i+1].Decode(&v); err != nil {
				return nil, err
			}
			out = append(out, SetFlag{Name: val.Content[i].Value, Value: v})
		}
		return out, nil
	case "unlock":
		var ids []string
		if val.Kind == yaml.ScalarNode {
			ids = []string{val.Value}
		} else if err := val.Decode(&ids); err != nil {
			return nil, err
		}
		out := make([]Op, 0, len(ids))
		for _, id := range ids {
			out = append(out, UnlockCharacter{Character: id})
		}
		return out, nil
	case "message":
		var s string
		if err := val.Decode(&s); err != nil {
			return nil, err
		}
		return []Op{Message{Text: s}}, nil
	case "restore":
		var r struct {
			HP int `yaml:"hp"`
			MP int `yaml:"mp"`
		}
		if err := val.Decode(&r); err != nil {
			return nil, err
		}
		return []Op{Restore{HP: r.HP, MP: r.MP}}, nil
	case "experience":
		var n int
		if err := val.Decode(&n); err != nil {
			return nil, err
		}
		return []Op{GainExperience{Amount: n}}, nil
	case "rank":
		var n int
		if err := val.Decode(&n); err != nil {
			return nil, err
		}
		return []Op{RankDelta{Delta: n}}, nil
	default:
		return nil, errors.New("unknown effect kind")
	}
}

type intPair struct {
	key   string
	value int
}

func intPairs(val *yaml.Node) ([]intPair, error) {
	if val.Kind != yaml.MappingNode {
		return nil, errors.New("expected a name: number mapping")
	}
	out := make([]intPair, 0, len(val.Content)/2)
	for i := 0; i+1 < len(val.Content); i += 2 {
		var n int
		if err := val.Content[i+1].Decode(&n); err != nil {
			return nil, fmt.Errorf("%s: %w", val.Content[i].Value, err)
		}
		out = append(out, intPair{key: val.Content[i].Value, value: n})
	}
	return out, nil
}

// itemCounts accepts a single id, a list of ids, or an id: count mapping.
func itemCounts(val *yaml.Node) ([]intPair, error) {
	switch val.Kind {
	case yaml.ScalarNode:
		return []intPair{{key: val.Value, value: 1}}, nil
	case yaml.SequenceNode:
		var ids []string
		if err := val.Decode(&ids); err != nil {
			return nil, err
		}
		out := make([]intPair, len(ids))
		for i, id := range ids {
			out[i] = intPair{key: id, value: 1}
		}
		return out, nil
	default:
		return intPairs(val)
	}
}
