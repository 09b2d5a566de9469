// Package events carries game notifications from the engine to the front end and audio
package events

import (
	"time"
)

// EventType represents the type of game event
type EventType int

const (
	// EventClick signals a manual hack
	// Trigger: Game.Click | Amount: Bits credited
	EventClick EventType = iota

	// EventPurchase signals a generator bought
	// Trigger: Game.Purchase | Payload: generator id
	EventPurchase

	// EventMarketPurchase signals a black market item bought
	// Payload: item id
	EventMarketPurchase

	// EventSkillPurchase signals a skill level bought
	// Payload: skill id | Amount: new level
	EventSkillPurchase

	// EventRejected signals an action refused for funds, eligibility or state
	// Consumer: audio (error buzz), log
	EventRejected

	// EventAchievement signals an achievement unlock
	// Payload: achievement.Definition | Amount: Cryptos rewarded
	EventAchievement

	// EventStory signals a story event trigger
	// Payload: achievement.Definition
	EventStory

	// EventReboot signals a completed reboot
	// Amount: levels gained
	EventReboot

	// EventFirewallSpawned signals the penalty engaging
	// Payload: hex code
	EventFirewallSpawned

	// EventFirewallCleared signals the penalty resolved
	// Amount: Bits rewarded
	EventFirewallCleared

	// EventFirewallMiss signals a full wrong code entry
	EventFirewallMiss

	// EventFirewallKey signals one accepted code character
	EventFirewallKey

	// EventGlitchSpawned signals a collectible glitch
	// Payload: glitch id
	EventGlitchSpawned

	// EventGlitchCollected signals a glitch captured
	// Amount: Cryptos rewarded
	EventGlitchCollected

	// EventGlitchLost signals a glitch expired uncollected
	EventGlitchLost

	// EventBreachStarted signals the data breach grid opening
	EventBreachStarted

	// EventBreachNode signals a revealed breach node
	// Payload: minigame.NodeKind
	EventBreachNode

	// EventBreachEnded signals breach completion or timeout
	// Amount: Bits rewarded, zero on failure
	EventBreachEnded

	// EventOfflineProgress signals catch-up credited at load
	// Amount: Bits credited
	EventOfflineProgress

	// EventSaved signals a snapshot written to the store
	EventSaved

	// EventImported signals a save string accepted
	EventImported

	// EventError signals a recovered engine error
	EventError
)

var typeNames = [...]string{
	EventClick:           "click",
	EventPurchase:        "purchase",
	EventMarketPurchase:  "market_purchase",
	EventSkillPurchase:   "skill_purchase",
	EventRejected:        "rejected",
	EventAchievement:     "achievement",
	EventStory:           "story",
	EventReboot:          "reboot",
	EventFirewallSpawned: "firewall_spawned",
	EventFirewallCleared: "firewall_cleared",
	EventFirewallMiss:    "firewall_miss",
	EventFirewallKey:     "firewall_key",
	EventGlitchSpawned:   "glitch_spawned",
	EventGlitchCollected: "glitch_collected",
	EventGlitchLost:      "glitch_lost",
	EventBreachStarted:   "breach_started",
	EventBreachNode:      "breach_node",
	EventBreachEnded:     "breach_ended",
	EventOfflineProgress: "offline_progress",
	EventSaved:           "saved",
	EventImported:        "imported",
	EventError:           "error",
}

func (t EventType) String() string {
	if t >= 0 && int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "unknown"
}

// GameEvent is one notification; Message is the player-facing log line
type GameEvent struct {
	Type      EventType
	Message   string
	Amount    float64
	Payload   any
	Timestamp time.Time
}
