package content

import (
	"fmt"

	"github.com/cory-johannsen/heartbound/internal/game/condition"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/event"
)

// Reference kinds.
const (
	KindCharacter = "character"
	KindItem      = "item"
	KindLocation  = "location"
	KindSkill     = "skill"
	KindNPC       = "npc"
	KindHook      = "script hook"
)

// Reference is one id named by a catalog entry.
type Reference struct {
	// From describes the referring entry, e.g. `event "poetry_reading" choice 1`.
	From string
	Kind string
	ID   string
}

type refs []Reference

func (rs *refs) add(from, kind, id string) {
	if id != "" {
		*rs = append(*rs, Reference{From: from, Kind: kind, ID: id})
	}
}

// References lists every cross-catalog reference in c, in catalog order.
func (c *Content) References() []Reference {
	var rs refs

	for _, ch := range c.Characters.All() {
		from := fmt.Sprintf("character %q", ch.ID)
		for _, id := range ch.Likes {
			rs.add(from, KindItem, id)
		}
		for _, id := range ch.Dislikes {
			rs.add(from, KindItem, id)
		}
		if ch.Battle != nil {
			for _, id := range ch.Battle.Skills {
				rs.add(from, KindSkill, id)
			}
		}
	}

	for _, it := range c.Items.AllItems() {
		rs.effect(fmt.Sprintf("item %q", it.ID), it.Use)
	}

	for _, loc := range c.Map.All() {
		for _, id := range loc.Opponents {
			rs.add(fmt.Sprintf("location %q", loc.ID), KindNPC, id)
		}
	}

	for _, t := range c.NPCs.All() {
		from := fmt.Sprintf("npc %q", t.ID)
		for _, id := range t.Skills {
			rs.add(from, KindSkill, id)
		}
		if t.Loot != nil {
			for _, d := range t.Loot.Items {
				rs.add(from, KindItem, d.ItemID)
			}
		}
	}

	for _, e := range c.Events.Events {
		rs.event(e)
	}
	for _, e := range c.Events.Ambient {
		rs.event(e)
	}
	return rs
}

func (rs *refs) event(e *event.Event) {
	from := fmt.Sprintf("event %q", e.ID)
	rs.add(from, KindLocation, e.Trigger.Location)
	rs.add(from, KindCharacter, e.Trigger.Character)
	rs.condition(from, e.Trigger.Require)
	for i, ch := range e.Choices {
		cf := fmt.Sprintf("%s choice %d", from, i+1)
		rs.condition(cf, ch.Condition)
		rs.effect(cf, ch.Effect)
	}
}

func (rs *refs) condition(from string, cond condition.Condition) {
	for _, chk := range cond {
		switch c := chk.(type) {
		case condition.HasItem:
			rs.add(from, KindItem, c.Item)
		case condition.MinAffection:
			rs.add(from, KindCharacter, c.Character)
		case condition.Unlocked:
			rs.add(from, KindCharacter, c.Character)
		case condition.Script:
			rs.add(from, KindHook, c.Hook)
		}
	}
}

func (rs *refs) effect(from string, eff effect.Effect) {
	for _, op := range eff {
		switch o := op.(type) {
		case effect.AffectionDelta:
			rs.add(from, KindCharacter, o.Character)
		case effect.GrantItem:
			rs.add(from, KindItem, o.Item)
		case effect.RemoveItem:
			rs.add(from, KindItem, o.Item)
		case effect.UnlockCharacter:
			rs.add(from, KindCharacter, o.Character)
		}
	}
}
