package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/cyber-clicker/events"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// SoundManager plays effects through the system speaker
// Every method is safe before Initialize; playback is skipped until the device is up
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	settings    Settings
	initialized bool
	played      [soundTypeCount]int // per-type play requests accepted while audible
}

// NewSoundManager creates a manager with the given preferences
func NewSoundManager(settings Settings) *SoundManager {
	if settings.Validate() != nil {
		settings.Volume = 0.5
	}
	return &SoundManager{
		mixer:    &beep.Mixer{},
		settings: settings,
	}
}

// Initialize opens the speaker
// Failure leaves the manager silent; the game runs without audio
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100))
	if err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// Play queues the effect unless muted
func (sm *SoundManager) Play(st SoundType) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.settings.Muted || st < 0 || st >= soundTypeCount {
		return
	}
	sm.played[st]++

	if !sm.initialized {
		return
	}
	s := CreateSound(st, sm.settings.Volume, sampleRate)
	if s == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Played returns how many audible requests st has received
func (sm *SoundManager) Played(st SoundType) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if st < 0 || st >= soundTypeCount {
		return 0
	}
	return sm.played[st]
}

// Settings returns the current preferences
func (sm *SoundManager) Settings() Settings {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.settings
}

// ToggleMute flips the mute flag and returns the new state
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.settings.Muted = !sm.settings.Muted
	return sm.settings.Muted
}

// SetVolume sets master volume, clamped to [0, 1]
func (sm *SoundManager) SetVolume(v float64) float64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.settings.Volume = max(0, min(v, 1))
	return sm.settings.Volume
}

// SoundFor maps a game event to its effect
func SoundFor(ev events.GameEvent) (SoundType, bool) {
	switch ev.Type {
	case events.EventClick:
		return SoundClick, true
	case events.EventPurchase, events.EventMarketPurchase, events.EventSkillPurchase:
		return SoundBuy, true
	case events.EventRejected, events.EventFirewallMiss, events.EventError, events.EventGlitchLost:
		return SoundError, true
	case events.EventFirewallSpawned, events.EventBreachStarted:
		return SoundAlert, true
	case events.EventFirewallCleared, events.EventGlitchCollected, events.EventImported:
		return SoundSuccess, true
	case events.EventBreachEnded:
		if won, _ := ev.Payload.(bool); won {
			return SoundSuccess, true
		}
		return SoundError, true
	case events.EventAchievement:
		return SoundAchievement, true
	case events.EventReboot:
		return SoundReboot, true
	case events.EventFirewallKey, events.EventBreachNode:
		return SoundTyping, true
	}
	return 0, false
}

// soundEvents lists every event type SoundFor maps
var soundEvents = []events.EventType{
	events.EventClick,
	events.EventPurchase,
	events.EventMarketPurchase,
	events.EventSkillPurchase,
	events.EventRejected,
	events.EventFirewallMiss,
	events.EventError,
	events.EventGlitchLost,
	events.EventFirewallSpawned,
	events.EventBreachStarted,
	events.EventFirewallCleared,
	events.EventGlitchCollected,
	events.EventImported,
	events.EventBreachEnded,
	events.EventAchievement,
	events.EventReboot,
	events.EventFirewallKey,
	events.EventBreachNode,
}

// NewEventHandler adapts sm into a router handler for any dispatch context
func NewEventHandler[T any](sm *SoundManager) events.Handler[T] {
	return events.HandlerFunc[T]{
		Types: soundEvents,
		Fn: func(_ T, ev events.GameEvent) {
			if st, ok := SoundFor(ev); ok {
				sm.Play(st)
			}
		},
	}
}
