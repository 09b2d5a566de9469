package audio

import "errors"

// SoundType identifies one effect
type SoundType int

const (
	SoundClick       SoundType = iota // Manual hack
	SoundBuy                          // Any accepted purchase
	SoundError                        // Rejection or wrong input
	SoundAlert                        // Firewall or breach opening
	SoundSuccess                      // Minigame reward
	SoundAchievement                  // Achievement unlock
	SoundReboot                       // Prestige reset
	SoundTyping                       // Accepted firewall character
	soundTypeCount
)

var soundNames = [soundTypeCount]string{
	SoundClick:       "click",
	SoundBuy:         "buy",
	SoundError:       "error",
	SoundAlert:       "alert",
	SoundSuccess:     "success",
	SoundAchievement: "achievement",
	SoundReboot:      "reboot",
	SoundTyping:      "typing",
}

func (s SoundType) String() string {
	if s >= 0 && s < soundTypeCount {
		return soundNames[s]
	}
	return "unknown"
}

// Sentinel errors
var (
	ErrInvalidVolume = errors.New("volume must be within [0, 1]")
)
