// Package command provides the play loop's command registry, parser, and
// built-in command definitions, and dispatches commands to a session.
package command

// Categories for organizing commands.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategoryEvent    = "event"
	CategorySocial   = "social"
	CategoryShop     = "shop"
	CategoryCombat   = "combat"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to session operations.
const (
	HandlerGo        = "go"
	HandlerWait      = "wait"
	HandlerLook      = "look"
	HandlerStatus    = "status"
	HandlerInventory = "inventory"
	HandlerParty     = "party"
	HandlerEvent     = "event"
	HandlerChoose    = "choose"
	HandlerDismiss   = "dismiss"
	HandlerTalk      = "talk"
	HandlerGift      = "gift"
	HandlerRecruit   = "recruit"
	HandlerLeave     = "leave"
	HandlerSwap      = "swap"
	HandlerShop      = "shop"
	HandlerBuy       = "buy"
	HandlerUse       = "use"
	HandlerFight     = "fight"
	HandlerSkill     = "skill"
	HandlerAuto      = "auto"
	HandlerFlee      = "flee"
	HandlerSave      = "save"
	HandlerSaves     = "saves"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the arguments, e.g. "gift <character> <item>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler maps to the session operation that runs it.
	Handler string
	// MinArgs is the number of arguments the command requires.
	MinArgs int
}

// BuiltinCommands returns all built-in commands for the play loop.
func BuiltinCommands() []Command {
	return []Command{
		// Movement commands
		{Name: "go", Aliases: []string{"move", "m"}, Usage: "go <location>", Help: "Walk to an adjacent location", Category: CategoryMovement, Handler: HandlerGo, MinArgs: 1},
		{Name: "wait", Aliases: []string{"rest", "z"}, Usage: "wait", Help: "Let time pass until the next part of the day", Category: CategoryMovement, Handler: HandlerWait},

		// World commands
		{Name: "look", Aliases: []string{"l"}, Usage: "look", Help: "Describe where you are and where you can go", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "status", Aliases: []string{"st", "me"}, Usage: "status", Help: "Show your stats, money and the date", Category: CategoryWorld, Handler: HandlerStatus},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Usage: "inventory", Help: "List what you carry", Category: CategoryWorld, Handler: HandlerInventory},
		{Name: "party", Aliases: []string{"pt"}, Usage: "party", Help: "Show party slots and synergy", Category: CategoryWorld, Handler: HandlerParty},

		// Event commands
		{Name: "event", Aliases: []string{"ev"}, Usage: "event", Help: "Show the event in front of you and its choices", Category: CategoryEvent, Handler: HandlerEvent},
		{Name: "choose", Aliases: []string{"c"}, Usage: "choose <n>", Help: "Pick choice n of the current event", Category: CategoryEvent, Handler: HandlerChoose, MinArgs: 1},
		{Name: "dismiss", Aliases: []string{"ignore"}, Usage: "dismiss", Help: "Walk away from the current event", Category: CategoryEvent, Handler: HandlerDismiss},

		// Social commands
		{Name: "talk", Aliases: []string{"t"}, Usage: "talk <character>", Help: "Chat with someone you have met", Category: CategorySocial, Handler: HandlerTalk, MinArgs: 1},
		{Name: "gift", Aliases: []string{"give"}, Usage: "gift <character> <item>", Help: "Give someone an item", Category: CategorySocial, Handler: HandlerGift, MinArgs: 2},
		{Name: "recruit", Aliases: []string{"invite"}, Usage: "recruit <character>", Help: "Ask someone to join your party", Category: CategorySocial, Handler: HandlerRecruit, MinArgs: 1},
		{Name: "leave", Aliases: nil, Usage: "leave <slot>", Help: "Remove the member in a party slot", Category: CategorySocial, Handler: HandlerLeave, MinArgs: 1},
		{Name: "swap", Aliases: nil, Usage: "swap <slot> <slot>", Help: "Exchange two party slots", Category: CategorySocial, Handler: HandlerSwap, MinArgs: 2},

		// Shop commands
		{Name: "shop", Aliases: []string{"wares"}, Usage: "shop", Help: "List what is for sale", Category: CategoryShop, Handler: HandlerShop},
		{Name: "buy", Aliases: []string{"b"}, Usage: "buy <item> [qty]", Help: "Buy an item at a shop", Category: CategoryShop, Handler: HandlerBuy, MinArgs: 1},
		{Name: "use", Aliases: []string{"u"}, Usage: "use <item>", Help: "Use a consumable item", Category: CategoryShop, Handler: HandlerUse, MinArgs: 1},

		// Combat commands
		{Name: "fight", Aliases: []string{"challenge"}, Usage: "fight <opponent> [slot]", Help: "Battle an opponent, yourself or with a party member", Category: CategoryCombat, Handler: HandlerFight, MinArgs: 1},
		{Name: "skill", Aliases: []string{"a", "attack"}, Usage: "skill <skill>", Help: "Use a skill on your turn", Category: CategoryCombat, Handler: HandlerSkill, MinArgs: 1},
		{Name: "auto", Aliases: nil, Usage: "auto", Help: "Let the greedy tactician finish the battle", Category: CategoryCombat, Handler: HandlerAuto},
		{Name: "flee", Aliases: []string{"run"}, Usage: "flee", Help: "Abandon the battle without reward", Category: CategoryCombat, Handler: HandlerFlee},

		// System commands
		{Name: "save", Aliases: nil, Usage: "save [slot]", Help: "Save the game", Category: CategorySystem, Handler: HandlerSave},
		{Name: "saves", Aliases: nil, Usage: "saves", Help: "List save slots", Category: CategorySystem, Handler: HandlerSaves},
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Stop playing", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// CategoryOrder lists categories in the order help prints them.
var CategoryOrder = []string{
	CategoryMovement, CategoryWorld, CategoryEvent, CategorySocial,
	CategoryShop, CategoryCombat, CategorySystem,
}
