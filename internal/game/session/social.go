package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/character"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/inventory"
	"github.com/cory-johannsen/heartbound/internal/game/party"
)

var (
	// ErrNotMet is returned when interacting with a character who is not unlocked.
	ErrNotMet = errors.New("you have not met them yet")
	// ErrNoItem is returned when the player does not hold the item.
	ErrNoItem = errors.New("you do not have that item")
	// ErrNotGiftable is returned when gifting a key item.
	ErrNotGiftable = errors.New("that item cannot be given away")
	// ErrNotConsumable is returned when using an item that is not a consumable.
	ErrNotConsumable = errors.New("that item cannot be used")
	// ErrNoShop is returned when buying outside a shop.
	ErrNoShop = errors.New("there is no shop here")
	// ErrNotForSale is returned when buying an item without a price.
	ErrNotForSale = errors.New("that item is not for sale")
	// ErrCannotRecruit is returned when a character will not join the party.
	ErrCannotRecruit = errors.New("cannot recruit")
)

// GiftResult describes a gift that was given.
type GiftResult struct {
	Character string
	Item      string
	// Delta is the affection change before clamping.
	Delta  int
	Change effect.AffectionChange
}

// Dialogue is what a character says at the current affection.
type Dialogue struct {
	Line string
	// Secret is set once affection reaches the character's secret threshold.
	Secret string
}

// character must be called with s.mu held. ok is false for a lenient unknown reference.
func (s *Session) character(id string) (*character.Character, bool, error) {
	ch, found := s.content.Characters.Get(id)
	if !found {
		return nil, false, s.unknown("character", id)
	}
	if !s.player.IsUnlocked(id) {
		return nil, false, fmt.Errorf("%w: %s", ErrNotMet, ch.Name)
	}
	return ch, true, nil
}

// item must be called with s.mu held.
func (s *Session) item(id string) (*inventory.ItemDef, bool, error) {
	it, found := s.content.Items.Item(id)
	if !found {
		return nil, false, s.unknown("item", id)
	}
	return it, true, nil
}

// apply runs eff against the player and swaps in the result. Must be called with s.mu held.
func (s *Session) apply(eff effect.Effect) (effect.Report, error) {
	next, rep, err := effect.Apply(eff, s.player)
	if err != nil {
		return effect.Report{}, err
	}
	s.player = next
	return rep, nil
}

// Gift gives one itemID to characterID. A liked item earns its gift value
// plus character.LikedGiftBonus, a disliked one costs
// character.DislikedGiftDelta; the item is consumed either way.
//
// Precondition: the character is unlocked and the player holds a giftable item.
func (s *Session) Gift(characterID, itemID string) (GiftResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return GiftResult{}, err
	}
	ch, ok, err := s.character(characterID)
	if !ok {
		return GiftResult{}, err
	}
	it, ok, err := s.item(itemID)
	if !ok {
		return GiftResult{}, err
	}
	if !s.player.HasItem(it.ID) {
		return GiftResult{}, fmt.Errorf("%w: %s", ErrNoItem, it.Name)
	}
	if !it.Giftable() {
		return GiftResult{}, fmt.Errorf("%w: %s", ErrNotGiftable, it.Name)
	}
	delta := ch.GiftDelta(it.ID, it.GiftValue)
	rep, err := s.apply(effect.Effect{
		effect.RemoveItem{Item: it.ID, Count: 1},
		effect.AffectionDelta{Character: ch.ID, Delta: delta},
	})
	if err != nil {
		return GiftResult{}, err
	}
	res := GiftResult{Character: ch.ID, Item: it.ID, Delta: delta}
	if len(rep.AffectionChanges) > 0 {
		res.Change = rep.AffectionChanges[0]
	}
	s.logger.Info("gift given",
		zap.String("character", ch.ID),
		zap.String("item", it.ID),
		zap.Int("delta", delta),
	)
	return res, nil
}

// Talk returns the character's line for the current affection and, past the
// secret threshold, their secret.
func (s *Session) Talk(characterID string) (Dialogue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return Dialogue{}, err
	}
	ch, ok, err := s.character(characterID)
	if !ok {
		return Dialogue{}, err
	}
	a := s.player.AffectionFor(ch.ID)
	var d Dialogue
	d.Line, _ = ch.DialogueFor(a)
	if ch.SecretRevealed(a) {
		d.Secret = ch.Secret
	}
	return d, nil
}

// Recruit adds characterID to the first free party slot.
//
// Precondition: the character is unlocked, fights, and affection has reached
// their recruit threshold.
// Postcondition: Returns the slot index.
func (s *Session) Recruit(characterID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return -1, err
	}
	if s.fight != nil {
		return -1, ErrInBattle
	}
	ch, ok, err := s.character(characterID)
	if !ok {
		return -1, err
	}
	if ch.Battle == nil {
		return -1, fmt.Errorf("%w: %s does not fight", ErrCannotRecruit, ch.Name)
	}
	if a := s.player.AffectionFor(ch.ID); !ch.CanRecruit(a) {
		return -1, fmt.Errorf("%w: %s needs affection %d (have %d)", ErrCannotRecruit, ch.Name, ch.RecruitThreshold, a)
	}
	c, err := ch.Combatant(s.content.Skills, 0)
	if err != nil {
		return -1, err
	}
	slot, err := s.party.Add(&party.Member{Combatant: c, Heroine: ch.Heroine})
	if err != nil {
		return -1, err
	}
	s.logger.Info("recruited",
		zap.String("character", ch.ID),
		zap.Int("slot", slot),
		zap.Int("synergy", s.party.Synergy()),
	)
	return slot, nil
}

// LeaveParty removes the member in slot.
func (s *Session) LeaveParty(slot int) (*party.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.fight != nil {
		return nil, ErrInBattle
	}
	return s.party.Remove(slot)
}

// SwapSlots exchanges two party slots.
func (s *Session) SwapSlots(i, j int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	if s.fight != nil {
		return ErrInBattle
	}
	return s.party.Swap(i, j)
}

// Buy purchases qty of itemID at the current location's shop.
//
// Postcondition: on effect.ErrInsufficientFunds nothing changes.
func (s *Session) Buy(itemID string, qty int) (effect.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return effect.Report{}, err
	}
	if qty < 1 {
		qty = 1
	}
	loc, _ := s.content.Map.Location(s.player.Location)
	if loc == nil || !loc.Shop {
		return effect.Report{}, ErrNoShop
	}
	it, ok, err := s.item(itemID)
	if !ok {
		return effect.Report{}, err
	}
	if !it.Buyable() {
		return effect.Report{}, fmt.Errorf("%w: %s", ErrNotForSale, it.Name)
	}
	rep, err := s.apply(effect.Effect{
		effect.MoneyDelta{Delta: -it.Price * qty},
		effect.GrantItem{Item: it.ID, Count: qty},
	})
	if err != nil {
		return effect.Report{}, fmt.Errorf("buying %s for %s: %w", it.Name, inventory.FormatMoney(it.Price*qty), err)
	}
	s.logger.Info("bought", zap.String("item", it.ID), zap.Int("qty", qty))
	return rep, nil
}

// Use consumes one itemID and applies its effect.
//
// Precondition: no battle is in progress.
func (s *Session) Use(itemID string) (effect.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return effect.Report{}, err
	}
	if s.fight != nil {
		return effect.Report{}, ErrInBattle
	}
	it, ok, err := s.item(itemID)
	if !ok {
		return effect.Report{}, err
	}
	if !s.player.HasItem(it.ID) {
		return effect.Report{}, fmt.Errorf("%w: %s", ErrNoItem, it.Name)
	}
	if it.Kind != inventory.KindConsumable {
		return effect.Report{}, fmt.Errorf("%w: %s", ErrNotConsumable, it.Name)
	}
	eff := append(effect.Effect{effect.RemoveItem{Item: it.ID, Count: 1}}, it.Use...)
	rep, err := s.apply(eff)
	if err != nil {
		return effect.Report{}, err
	}
	s.logger.Info("item used", zap.String("item", it.ID))
	return rep, nil
}
