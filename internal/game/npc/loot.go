package npc

import (
	"fmt"

	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
)

// CurrencyDrop defines the range of gold an opponent can drop when beaten.
type CurrencyDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ItemDrop defines a single item entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable defines the possible loot drops for an opponent template.
type LootTable struct {
	Currency *CurrencyDrop `yaml:"currency"`
	Items    []ItemDrop    `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff all currency and item constraints hold;
// an empty loot table (no currency, no items) is valid.
func (lt *LootTable) Validate() error {
	if lt.Currency != nil {
		if lt.Currency.Min < 0 {
			return fmt.Errorf("loot table: currency min must be >= 0, got %d", lt.Currency.Min)
		}
		if lt.Currency.Min > lt.Currency.Max {
			return fmt.Errorf("loot table: currency min (%d) must be <= max (%d)", lt.Currency.Min, lt.Currency.Max)
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// RollLoot rolls lt against src and returns the drop as an effect on the winner.
//
// Precondition: lt must have passed Validate(); src must be non-nil.
// Postcondition: gold is in [Currency.Min, Currency.Max] if currency is set;
// each item's count is in [MinQty, MaxQty] for items that pass the chance roll.
func RollLoot(lt LootTable, src dice.Source) effect.Effect {
	var eff effect.Effect

	if lt.Currency != nil && lt.Currency.Max > 0 {
		gold := lt.Currency.Min
		if spread := lt.Currency.Max - lt.Currency.Min; spread > 0 {
			gold += src.Intn(spread + 1)
		}
		if gold > 0 {
			eff = append(eff, effect.MoneyDelta{Delta: gold})
		}
	}

	for _, item := range lt.Items {
		if !dice.Chance(src, item.Chance) {
			continue
		}
		qty := item.MinQty
		if spread := item.MaxQty - item.MinQty; spread > 0 {
			qty += src.Intn(spread + 1)
		}
		eff = append(eff, effect.GrantItem{Item: item.ItemID, Count: qty})
	}

	return eff
}
