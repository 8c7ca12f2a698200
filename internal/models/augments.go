package models

import "sort"

// NoAugment is the canonical value of an empty equipment slot
const NoAugment = "N/A"

// Strategy archetypes implied by equipped augments
const (
	StrategyAggressiveStarter = "AGGRESSIVE_STARTER"
	StrategyBigFinisher       = "BIG_FINISHER"
	StrategyPassiveSpeedster  = "PASSIVE_SPEEDSTER"
	StrategyAugmentMerchant   = "AUGMENT_MERCHANT"
)

var augmentDescriptions = map[string]string{
	"Void C100":      "Passive speed boost.",
	"Crimson C":      "Boost when ahead of leader.",
	"GX-Core C":      "Boost when behind leader.",
	"Darklight 100C": "Boost when near front early.",
	"Midnight 100C":  "Boost when behind pack early.",
	"GX-Core H":      "Boost on final stretch.",
	"Midnight 100H":  "Boost when behind adjacent horse.",
	"Darklight 100H": "Boost when ahead early.",
	"Void H100":      "Passive speed boost.",
	"Crimson H":      "Boost when near leader late.",
	"Midnight 100R":  "Boost when behind pack late.",
	"Crimson R":      "Boost when ahead of adjacent horse.",
	"GX-Core R":      "Boost when passing.",
	"Void R100":      "Passive speed boost.",
	"Darklight 100R": "Boost when near front mid-race.",
	NoAugment:        "None",
}

var strategyAugments = map[string][]string{
	StrategyAggressiveStarter: {"Darklight 100C", "Darklight 100R"},
	StrategyBigFinisher:       {"Crimson C", "GX-Core H"},
	StrategyPassiveSpeedster:  {"Void C100", "Void H100", "Void R100"},
	StrategyAugmentMerchant:   {"GX-Core C", "Midnight 100H", "Crimson R", "GX-Core R", "Midnight 100C", "Darklight 100H", "Midnight 100R"},
}

// AugmentDescription returns the effect description of an augment
func AugmentDescription(name string) (string, bool) {
	desc, ok := augmentDescriptions[name]
	return desc, ok
}

// IsKnownAugment reports whether the augment is in the catalog
func IsKnownAugment(name string) bool {
	_, ok := augmentDescriptions[name]
	return ok && name != NoAugment
}

// StrategiesFor returns the archetypes any of the given augments belong to, sorted
func StrategiesFor(augments ...string) []string {
	seen := make(map[string]bool)
	for _, aug := range augments {
		for strategy, members := range strategyAugments {
			for _, m := range members {
				if m == aug {
					seen[strategy] = true
				}
			}
		}
	}

	strategies := make([]string, 0, len(seen))
	for s := range seen {
		strategies = append(strategies, s)
	}
	sort.Strings(strategies)
	return strategies
}
