package persistence

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidFormat is returned for corrupt or malformed save data
var ErrInvalidFormat = errors.New("invalid save format")

// wireSnapshot mirrors Snapshot with optional fields so missing keys can be told apart from zeros
// Numbers decode as float64 since older saves were written by a JavaScript client
type wireSnapshot struct {
	Version             *float64               `json:"version"`
	Bits                *float64               `json:"bits"`
	LifetimeBits        *float64               `json:"lifetimeBits"`
	Cryptos             *float64               `json:"cryptos"`
	PermanentMultiplier *float64               `json:"permanentMultiplier"`
	OfflineMultiplier   *float64               `json:"offlineMultiplier"`
	SkillPoints         *float64               `json:"skillPoints"`
	Skills              map[string]float64     `json:"skills"`
	RootAccessLevel     *float64               `json:"rootAccessLevel"`
	Upgrades            map[string]wireUpgrade `json:"upgrades"`
	Achievements        []Achievement          `json:"achievements"`
	StoryEvents         []StoryEvent           `json:"storyEvents"`
	ActiveBoosts        []wireBoost            `json:"activeBoosts"`
	ActiveClickBoosts   []wireBoost            `json:"activeClickBoosts"`
	Statistics          *wireStatistics        `json:"statistics"`
	TutorialSeen        *bool                  `json:"tutorialSeen"`
	AutoGlitchEnabled   *bool                  `json:"autoGlitchEnabled"`
	LastSaveTime        *float64               `json:"lastSaveTime"`
}

type wireUpgrade struct {
	Count float64 `json:"count"`
}

// wireBoost accepts both rate ("multiplier") and click ("clickMultiplier") shapes
type wireBoost struct {
	Multiplier      float64 `json:"multiplier"`
	ClickMultiplier float64 `json:"clickMultiplier"`
	EndTime         float64 `json:"endTime"`
}

type wireStatistics struct {
	TotalClicks          float64 `json:"totalClicks"`
	TotalBitsEarned      float64 `json:"totalBitsEarned"`
	PlayTimeSeconds      float64 `json:"playTimeSeconds"`
	RebootCount          float64 `json:"rebootCount"`
	FirewallsEncountered float64 `json:"firewallsEncountered"`
	FirewallsCleared     float64 `json:"firewallsCleared"`
	SessionStartTime     float64 `json:"sessionStartTime"`
}

// migrations[v] upgrades a version v save to v+1 by filling fields introduced in v+1
// Existing fields are never overwritten
var migrations = map[int]func(*wireSnapshot){
	0: func(w *wireSnapshot) {},
	1: func(w *wireSnapshot) {
		if w.Statistics == nil {
			w.Statistics = &wireStatistics{}
		}
		if w.StoryEvents == nil {
			w.StoryEvents = []StoryEvent{}
		}
		if w.Skills == nil {
			w.Skills = map[string]float64{}
		}
		if w.SkillPoints == nil {
			w.SkillPoints = ptr(0.0)
		}
		if w.TutorialSeen == nil {
			w.TutorialSeen = ptr(false)
		}
	},
	2: func(w *wireSnapshot) {
		if w.OfflineMultiplier == nil {
			w.OfflineMultiplier = ptr(1.0)
		}
		if w.AutoGlitchEnabled == nil {
			w.AutoGlitchEnabled = ptr(false)
		}
		if w.ActiveClickBoosts == nil {
			w.ActiveClickBoosts = []wireBoost{}
		}
	},
}

func ptr[T any](v T) *T { return &v }

// Decode parses a stored snapshot, migrating older versions forward
func Decode(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	version := 0
	if w.Version != nil && finite(*w.Version) && *w.Version > 0 {
		version = int(*w.Version)
	}
	for v := version; v < CurrentVersion; v++ {
		if m, ok := migrations[v]; ok {
			m(&w)
		}
	}

	return w.toSnapshot(), nil
}

// Encode serializes s at the current version
func Encode(s Snapshot) ([]byte, error) {
	s.Version = CurrentVersion
	if s.Skills == nil {
		s.Skills = map[string]uint64{}
	}
	if s.Upgrades == nil {
		s.Upgrades = map[string]Upgrade{}
	}
	return json.Marshal(s)
}

// Export encodes s as a portable base64 string
func Export(s Snapshot) (string, error) {
	b, err := Encode(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Import decodes a string produced by Export
// The payload must carry a numeric bits field and an upgrades object
func Import(encoded string) (Snapshot, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return Snapshot{}, fmt.Errorf("%w: empty save string", ErrInvalidFormat)
	}
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	var probe map[string]any
	if err := json.Unmarshal(b, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if _, ok := probe["bits"].(float64); !ok {
		return Snapshot{}, fmt.Errorf("%w: missing numeric bits", ErrInvalidFormat)
	}
	if _, ok := probe["upgrades"].(map[string]any); !ok {
		return Snapshot{}, fmt.Errorf("%w: missing upgrades object", ErrInvalidFormat)
	}

	return Decode(b)
}

func (w *wireSnapshot) toSnapshot() Snapshot {
	s := Snapshot{
		Version:             CurrentVersion,
		Bits:                amount(w.Bits, 0),
		LifetimeBits:        amount(w.LifetimeBits, 0),
		Cryptos:             amount(w.Cryptos, 0),
		PermanentMultiplier: multiplier(w.PermanentMultiplier),
		OfflineMultiplier:   multiplier(w.OfflineMultiplier),
		SkillPoints:         count(deref(w.SkillPoints)),
		RootAccessLevel:     count(deref(w.RootAccessLevel)),
		Skills:              make(map[string]uint64, len(w.Skills)),
		Upgrades:            make(map[string]Upgrade, len(w.Upgrades)),
		Achievements:        w.Achievements,
		StoryEvents:         w.StoryEvents,
		LastSaveTime:        int64(count(deref(w.LastSaveTime))),
	}
	if s.LifetimeBits < s.Bits {
		s.LifetimeBits = s.Bits
	}
	if s.Achievements == nil {
		s.Achievements = []Achievement{}
	}
	if s.StoryEvents == nil {
		s.StoryEvents = []StoryEvent{}
	}
	if w.TutorialSeen != nil {
		s.TutorialSeen = *w.TutorialSeen
	}
	if w.AutoGlitchEnabled != nil {
		s.AutoGlitchEnabled = *w.AutoGlitchEnabled
	}

	for id, lvl := range w.Skills {
		if n := count(lvl); n > 0 {
			s.Skills[id] = n
		}
	}
	for id, u := range w.Upgrades {
		s.Upgrades[id] = Upgrade{Count: count(u.Count)}
	}

	s.ActiveBoosts = []RateBoost{}
	for _, b := range w.ActiveBoosts {
		if finite(b.Multiplier) && b.Multiplier > 0 {
			s.ActiveBoosts = append(s.ActiveBoosts, RateBoost{Multiplier: b.Multiplier, EndTime: int64(count(b.EndTime))})
		}
	}
	s.ActiveClickBoosts = []ClickBoost{}
	for _, b := range w.ActiveClickBoosts {
		m := b.ClickMultiplier
		if m == 0 {
			m = b.Multiplier
		}
		if finite(m) && m > 0 {
			s.ActiveClickBoosts = append(s.ActiveClickBoosts, ClickBoost{ClickMultiplier: m, EndTime: int64(count(b.EndTime))})
		}
	}

	if st := w.Statistics; st != nil {
		s.Statistics = Statistics{
			TotalClicks:          count(st.TotalClicks),
			TotalBitsEarned:      amount(&st.TotalBitsEarned, 0),
			PlayTimeSeconds:      count(st.PlayTimeSeconds),
			RebootCount:          count(st.RebootCount),
			FirewallsEncountered: count(st.FirewallsEncountered),
			FirewallsCleared:     count(st.FirewallsCleared),
			SessionStartTime:     int64(count(st.SessionStartTime)),
		}
	}
	return s
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// amount returns a finite non-negative balance or def
func amount(v *float64, def float64) float64 {
	if v == nil || !finite(*v) || *v < 0 {
		return def
	}
	return *v
}

// multiplier treats missing, zero or corrupt values as the neutral 1
func multiplier(v *float64) float64 {
	if v == nil || !finite(*v) || *v < 1 {
		return 1
	}
	return *v
}

// count truncates to a non-negative integer
func count(v float64) uint64 {
	if !finite(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}
