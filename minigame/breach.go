package minigame

import (
	"errors"
	"time"
)

const (
	GridSize  = 5
	GridCells = GridSize * GridSize
)

var (
	ErrBreachOver          = errors.New("breach is over")
	ErrNodeOutOfRange      = errors.New("node out of range")
	ErrNodeRevealed        = errors.New("node already revealed")
	ErrInvalidBreachConfig = errors.New("invalid breach config")
)

// NodeKind is the hidden content of a grid cell
type NodeKind int

const (
	NodeEmpty NodeKind = iota
	NodeData
	NodeICE
)

func (k NodeKind) String() string {
	switch k {
	case NodeData:
		return "data"
	case NodeICE:
		return "ice"
	default:
		return "empty"
	}
}

// BreachState is the lifecycle of one breach attempt
type BreachState int

const (
	BreachActive BreachState = iota
	BreachWon
	BreachLost
)

// BreachConfig sizes a breach attempt
type BreachConfig struct {
	Duration   time.Duration `yaml:"duration"`
	MinData    int           `yaml:"min_data"`
	MaxData    int           `yaml:"max_data"`
	MinICE     int           `yaml:"min_ice"`
	MaxICE     int           `yaml:"max_ice"`
	ICEPenalty time.Duration `yaml:"ice_penalty"`
}

// DefaultBreachConfig returns a 10s breach with 5-9 data and 3-5 ICE nodes
func DefaultBreachConfig() BreachConfig {
	return BreachConfig{
		Duration:   10 * time.Second,
		MinData:    5,
		MaxData:    9,
		MinICE:     3,
		MaxICE:     5,
		ICEPenalty: 2 * time.Second,
	}
}

// Validate checks the node counts fit the grid
func (c BreachConfig) Validate() error {
	switch {
	case c.Duration <= 0, c.ICEPenalty < 0:
		return ErrInvalidBreachConfig
	case c.MinData < 1, c.MaxData < c.MinData, c.MinICE < 0, c.MaxICE < c.MinICE:
		return ErrInvalidBreachConfig
	case c.MaxData+c.MaxICE > GridCells:
		return ErrInvalidBreachConfig
	}
	return nil
}

// Breach is one data breach attempt on a GridSize x GridSize grid
type Breach struct {
	nodes    [GridCells]NodeKind
	revealed [GridCells]bool
	deadline time.Time
	penalty  time.Duration
	score    int
	total    int
	state    BreachState
}

// NewBreach places data and ICE nodes on random empty cells and starts the timer
func NewBreach(cfg BreachConfig, r Rand, now time.Time) *Breach {
	b := &Breach{
		deadline: now.Add(cfg.Duration),
		penalty:  cfg.ICEPenalty,
	}
	b.total = cfg.MinData + r.IntN(cfg.MaxData-cfg.MinData+1)
	ice := cfg.MinICE + r.IntN(cfg.MaxICE-cfg.MinICE+1)

	b.place(NodeData, b.total, r)
	b.place(NodeICE, ice, r)
	return b
}

func (b *Breach) place(kind NodeKind, n int, r Rand) {
	for placed := 0; placed < n; {
		i := r.IntN(GridCells)
		if b.nodes[i] == NodeEmpty {
			b.nodes[i] = kind
			placed++
		}
	}
}

// Hack reveals node i
// Data scores, ICE shortens the timer, the last data node wins the breach
func (b *Breach) Hack(i int, now time.Time) (NodeKind, error) {
	if b.Check(now) != BreachActive {
		return NodeEmpty, ErrBreachOver
	}
	if i < 0 || i >= GridCells {
		return NodeEmpty, ErrNodeOutOfRange
	}
	if b.revealed[i] {
		return b.nodes[i], ErrNodeRevealed
	}
	b.revealed[i] = true

	kind := b.nodes[i]
	switch kind {
	case NodeData:
		b.score++
		if b.score >= b.total {
			b.state = BreachWon
		}
	case NodeICE:
		b.deadline = b.deadline.Add(-b.penalty)
		b.Check(now)
	}
	return kind, nil
}

// Check moves an active breach to lost once its deadline has passed
func (b *Breach) Check(now time.Time) BreachState {
	if b.state == BreachActive && !now.Before(b.deadline) {
		b.state = BreachLost
	}
	return b.state
}

// State returns the last evaluated state
func (b *Breach) State() BreachState { return b.state }

// Remaining returns time left, zero once expired
func (b *Breach) Remaining(now time.Time) time.Duration {
	return max(b.deadline.Sub(now), 0)
}

// Node returns the content of cell i and whether it has been revealed
func (b *Breach) Node(i int) (NodeKind, bool) {
	if i < 0 || i >= GridCells {
		return NodeEmpty, false
	}
	return b.nodes[i], b.revealed[i]
}

// Score returns data nodes hacked and data nodes total
func (b *Breach) Score() (hacked, total int) {
	return b.score, b.total
}
