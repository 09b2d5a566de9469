// Package persistence defines the saved game shape, its migrations and the stores that hold it
package persistence

import (
	"time"
)

// CurrentVersion is the schema version written by Encode
//
//	0/1: bits, lifetimeBits, upgrades, achievements, rootAccessLevel, cryptos,
//	     permanentMultiplier, activeBoosts
//	2:   statistics, storyEvents, skills, skillPoints, tutorialSeen
//	3:   offlineMultiplier, autoGlitchEnabled, activeClickBoosts
const CurrentVersion = 3

// Snapshot is the serializable projection of a game
type Snapshot struct {
	Version             int                `json:"version"`
	Bits                float64            `json:"bits"`
	LifetimeBits        float64            `json:"lifetimeBits"`
	Cryptos             float64            `json:"cryptos"`
	PermanentMultiplier float64            `json:"permanentMultiplier"`
	OfflineMultiplier   float64            `json:"offlineMultiplier"`
	SkillPoints         uint64             `json:"skillPoints"`
	Skills              map[string]uint64  `json:"skills"`
	RootAccessLevel     uint64             `json:"rootAccessLevel"`
	Upgrades            map[string]Upgrade `json:"upgrades"`
	Achievements        []Achievement      `json:"achievements"`
	StoryEvents         []StoryEvent       `json:"storyEvents"`
	ActiveBoosts        []RateBoost        `json:"activeBoosts"`
	ActiveClickBoosts   []ClickBoost       `json:"activeClickBoosts"`
	Statistics          Statistics         `json:"statistics"`
	TutorialSeen        bool               `json:"tutorialSeen"`
	AutoGlitchEnabled   bool               `json:"autoGlitchEnabled"`
	LastSaveTime        int64              `json:"lastSaveTime"`
}

// Upgrade is the persisted part of an owned generator; cost is derived on load
type Upgrade struct {
	Count uint64 `json:"count"`
}

type Achievement struct {
	ID       string `json:"id"`
	Unlocked bool   `json:"unlocked"`
}

type StoryEvent struct {
	ID        string `json:"id"`
	Triggered bool   `json:"triggered"`
}

// RateBoost is a persisted rate boost; EndTime is epoch milliseconds
type RateBoost struct {
	Multiplier float64 `json:"multiplier"`
	EndTime    int64   `json:"endTime"`
}

// ClickBoost is a persisted click boost; EndTime is epoch milliseconds
type ClickBoost struct {
	ClickMultiplier float64 `json:"clickMultiplier"`
	EndTime         int64   `json:"endTime"`
}

type Statistics struct {
	TotalClicks          uint64  `json:"totalClicks"`
	TotalBitsEarned      float64 `json:"totalBitsEarned"`
	PlayTimeSeconds      uint64  `json:"playTimeSeconds"`
	RebootCount          uint64  `json:"rebootCount"`
	FirewallsEncountered uint64  `json:"firewallsEncountered"`
	FirewallsCleared     uint64  `json:"firewallsCleared"`
	SessionStartTime     int64   `json:"sessionStartTime"`
}

// Fresh returns the snapshot of a new game started at now
func Fresh(now time.Time) Snapshot {
	return Snapshot{
		Version:             CurrentVersion,
		PermanentMultiplier: 1,
		OfflineMultiplier:   1,
		Skills:              map[string]uint64{},
		Upgrades:            map[string]Upgrade{},
		Statistics:          Statistics{SessionStartTime: now.UnixMilli()},
		LastSaveTime:        now.UnixMilli(),
	}
}

// DropExpired removes boosts whose end time is at or before now
// The filtered lists are fresh slices, so copies of s keep their own boosts
func (s *Snapshot) DropExpired(now time.Time) {
	ms := now.UnixMilli()

	rate := make([]RateBoost, 0, len(s.ActiveBoosts))
	for _, b := range s.ActiveBoosts {
		if b.EndTime > ms {
			rate = append(rate, b)
		}
	}
	s.ActiveBoosts = rate

	click := make([]ClickBoost, 0, len(s.ActiveClickBoosts))
	for _, b := range s.ActiveClickBoosts {
		if b.EndTime > ms {
			click = append(click, b)
		}
	}
	s.ActiveClickBoosts = click
}

// SavedAt returns LastSaveTime as a time, zero when never saved
func (s *Snapshot) SavedAt() time.Time {
	if s.LastSaveTime <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.LastSaveTime)
}
