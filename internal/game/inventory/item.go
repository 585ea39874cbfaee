// Package inventory holds the item catalog: gifts, consumables and key items
// with their shop price, gift value and use effect.
package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/heartbound/internal/game/effect"
)

// Kind constants for ItemDef.Kind.
const (
	KindGift       = "gift"
	KindConsumable = "consumable"
	KindKey        = "key"
)

// validKinds is the set of valid ItemDef kinds.
var validKinds = map[string]bool{
	KindGift:       true,
	KindConsumable: true,
	KindKey:        true,
}

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
	// Price is the shop price; zero means the item cannot be bought.
	Price int `yaml:"price"`
	// GiftValue is the base affection a gift earns before likes and dislikes.
	GiftValue int `yaml:"gift_value"`
	// Use is applied to the player when a consumable is used.
	Use effect.Effect `yaml:"use"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of gift, consumable, key; got %q", d.Kind))
	}
	if d.Price < 0 {
		errs = append(errs, errors.New("price must be >= 0"))
	}
	if d.GiftValue < 0 {
		errs = append(errs, errors.New("gift_value must be >= 0"))
	}
	if d.Kind == KindConsumable && len(d.Use) == 0 {
		errs = append(errs, errors.New("use is required when kind is consumable"))
	}
	if d.Kind != KindConsumable && len(d.Use) > 0 {
		errs = append(errs, errors.New("use is only allowed on consumables"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Giftable reports whether the item can be given as a gift.
func (d *ItemDef) Giftable() bool { return d.Kind != KindKey }

// Buyable reports whether the item is sold.
func (d *ItemDef) Buyable() bool { return d.Price > 0 }

// FormatMoney renders an amount of gold for display.
//
// Postcondition: uses the singular form only for exactly one coin.
func FormatMoney(amount int) string {
	if amount == 1 {
		return "1 gold coin"
	}
	return fmt.Sprintf("%d gold coins", amount)
}
