// Package content loads every catalog from a content root directory and
// cross-validates the references between them.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/character"
	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/event"
	"github.com/cory-johannsen/heartbound/internal/game/inventory"
	"github.com/cory-johannsen/heartbound/internal/game/npc"
	"github.com/cory-johannsen/heartbound/internal/game/world"
	"github.com/cory-johannsen/heartbound/internal/scripting"
)

// Layout of a content root.
const (
	CharactersDir = "characters"
	ItemsFile     = "items.yaml"
	LocationsFile = "locations.yaml"
	SkillsFile    = "skills.yaml"
	NPCsDir       = "npcs"
	EventsDir     = "events"
	ScriptsDir    = "scripts"
)

// Content holds every loaded catalog. It is read-only after Load and may be
// shared by any number of sessions.
type Content struct {
	Root       string
	Characters *character.Registry
	Items      *inventory.Registry
	Map        *world.Map
	Skills     *combat.SkillRegistry
	NPCs       *npc.Registry
	Events     *event.Catalog
	// ScriptDir is empty when the root has no scripts directory.
	ScriptDir string
}

// Load reads every catalog under root and validates cross references.
//
// Precondition: root must contain characters/, items.yaml, locations.yaml and skills.yaml;
// npcs/, events/ and scripts/ are optional.
// Postcondition: Returns a validated Content, or an error naming every broken reference.
func Load(root string) (*Content, error) {
	c := &Content{Root: root}
	var err error
	if c.Skills, err = combat.LoadSkills(filepath.Join(root, SkillsFile)); err != nil {
		return nil, err
	}
	if c.Items, err = inventory.LoadItems(filepath.Join(root, ItemsFile)); err != nil {
		return nil, err
	}
	if c.Map, err = world.LoadMapFromFile(filepath.Join(root, LocationsFile)); err != nil {
		return nil, err
	}
	if c.Characters, err = character.LoadDirectory(filepath.Join(root, CharactersDir)); err != nil {
		return nil, err
	}

	npcDir := filepath.Join(root, NPCsDir)
	if exists(npcDir) {
		if c.NPCs, err = npc.LoadTemplates(npcDir); err != nil {
			return nil, err
		}
	} else {
		c.NPCs = npc.NewRegistry()
	}

	eventDir := filepath.Join(root, EventsDir)
	if exists(eventDir) {
		if c.Events, err = event.LoadDirectory(eventDir); err != nil {
			return nil, err
		}
	} else if c.Events, err = event.NewCatalog(nil, nil); err != nil {
		return nil, err
	}

	if dir := filepath.Join(root, ScriptsDir); exists(dir) {
		c.ScriptDir = dir
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("content %q: %w", root, err)
	}
	return c, nil
}

func exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Validate checks that every id referenced by one catalog exists in the
// catalog it names.
//
// Postcondition: Returns nil, or a joined error with one entry per broken reference.
func (c *Content) Validate() error {
	var errs []error
	for _, r := range c.References() {
		if !c.Resolves(r) {
			errs = append(errs, fmt.Errorf("%s references unknown %s %q", r.From, r.Kind, r.ID))
		}
	}
	return errors.Join(errs...)
}

// Resolves reports whether r names an existing entry. Hook references always
// resolve here; CheckHooks validates them against a loaded Runner.
func (c *Content) Resolves(r Reference) bool {
	switch r.Kind {
	case KindCharacter:
		_, ok := c.Characters.Get(r.ID)
		return ok
	case KindItem:
		_, ok := c.Items.Item(r.ID)
		return ok
	case KindLocation:
		_, ok := c.Map.Location(r.ID)
		return ok
	case KindSkill:
		_, ok := c.Skills.Get(r.ID)
		return ok
	case KindNPC:
		_, ok := c.NPCs.Get(r.ID)
		return ok
	case KindHook:
		return true
	default:
		return false
	}
}

// NewScriptRunner loads the scripts directory into a fresh Runner and checks
// that every script hook named by a condition is defined.
//
// Postcondition: the caller owns the Runner and must Close it.
func (c *Content) NewScriptRunner(instLimit int, roller *dice.Roller, logger *zap.Logger) (*scripting.Runner, error) {
	r := scripting.NewRunner(instLimit, roller, logger)
	if c.ScriptDir != "" {
		if err := r.LoadDir(c.ScriptDir); err != nil {
			r.Close()
			return nil, err
		}
	}
	if err := c.CheckHooks(r); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// HookChecker reports whether a script hook is defined.
type HookChecker interface {
	HasHook(hook string) bool
}

// CheckHooks verifies every script hook reference against h.
func (c *Content) CheckHooks(h HookChecker) error {
	var errs []error
	for _, r := range c.References() {
		if r.Kind == KindHook && !h.HasHook(r.ID) {
			errs = append(errs, fmt.Errorf("%s references undefined script hook %q", r.From, r.ID))
		}
	}
	return errors.Join(errs...)
}
