package condition

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// UnmarshalYAML decodes a keyed condition mapping such as
//
//	min_stat: {charm: 15}
//	has_item: rose
//	probability: 0.25
//
// into checks, preserving the order the keys appear in. Unknown keys are an error.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: condition must be a mapping", node.Line)
	}
	var out Condition
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		checks, err := decodeCheck(key.Value, val)
		if err != nil {
			return fmt.Errorf("line %d: condition %q: %w", key.Line, key.Value, err)
		}
		out = append(out, checks...)
	}
	*c = out
	return nil
}

func decodeCheck(kind string, val *yaml.Node) ([]Check, error) {
	switch kind {
	case "min_stat":
		pairs, err := intPairs(val)
		if err != nil {
			return nil, err
		}
		out := make([]Check, 0, len(pairs))
		for _, kv := range pairs {
			st, err := player.ParseStat(kv.key)
			if err != nil {
				return nil, err
			}
			out = append(out, MinStat{Stat: st, Value: kv.value})
		}
		return out, nil
	case "min_money":
		var n int
		if err := val.Decode(&n); err != nil {
			return nil, err
		}
		return []Check{MinMoney{Amount: n}}, nil
	case "has_item":
		if val.Kind == yaml.ScalarNode {
			return []Check{HasItem{Item: val.Value, Count: 1}}, nil
		}
		pairs, err := intPairs(val)
		if err != nil {
			return nil, err
		}
		out := make([]Check, 0, len(pairs))
		for _, kv := range pairs {
			out = append(out, HasItem{Item: kv.key, Count: kv.value})
		}
		return out, nil
	case "min_affection":
		pairs, err := intPairs(val)
		if err != nil {
			return nil, err
		}
		out := make([]Check, 0, len(pairs))
		for _, kv := range pairs {
			out = append(out, MinAffection{Character: kv.key, Value: kv.value})
		}
		return out, nil
	case "min_day":
		var n int
		if err := val.Decode(&n); err != nil {
			return nil, err
		}
		return []Check{MinDay{Day: n}}, nil
	case "probability":
		var p float64
		if err := val.Decode(&p); err != nil {
			return nil, err
		}
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("probability must be in [0,1], got %v", p)
		}
		return []Check{Probability{P: p}}, nil
	case "aggregate_affection":
		var n int
		if err := val.Decode(&n); err != nil {
			return nil, err
		}
		return []Check{AggregateAffection{Min: n}}, nil
	case "time_of_day":
		var times []player.TimeOfDay
		if val.Kind == yaml.ScalarNode {
			var t player.TimeOfDay
			if err := val.Decode(&t); err != nil {
				return nil, err
			}
			times = append(times, t)
		} else if err := val.Decode(&times); err != nil {
			return nil, err
		}
		if len(times) == 0 {
			return nil, errors.New("time_of_day must name at least one phase")
		}
		return []Check{AtTime{Times: times}}, nil
	case "flag":
		if val.Kind == yaml.ScalarNode {
			return []Check{Flag{Name: val.Value, Want: true}}, nil
		}
		if val.Kind != yaml.MappingNode {
			return nil, errors.New("flag must be a name or a name: bool mapping")
		}
		var out []Check
		for i := 0; i+1 < len(val.Content); i += 2 {
			var want bool
			if err := val.Content[i+1].Decode(&want); err != nil {
				return nil, err
			}
			out = append(out, Flag{Name: val.Content[i].Value, Want: want})
		}
		return out, nil
	case "unlocked":
		var id string
		if err := val.Decode(&id); err != nil {
			return nil, err
		}
		return []Check{Unlocked{Character: id}}, nil
	case "script":
		var hook string
		if err := val.Decode(&hook); err != nil {
			return nil, err
		}
		if hook == "" {
			return nil, errors.New("script hook must not be empty")
		}
		return []Check{Script{Hook: hook}}, nil
	default:
		return nil, errors.New("unknown condition kind")
	}
}

type intPair struct {
	key   string
	value int
}

// intPairs decodes a name: int mapping in document order.
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
