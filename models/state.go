package models

// PlayerState is the lifecycle state of a lottery winner.
type PlayerState string

const (
	StateGhost      PlayerState = "ghost"
	StatePlaying    PlayerState = "playing"
	StateDead       PlayerState = "dead"
	StateInvincible PlayerState = "invincible"
	StateStaging    PlayerState = "staging"
)

type Capability uint8

const (
	CanCollide Capability = 1 << iota
	CanSound
	CanCount
	CanOperate
	CanMove
	CanDrop
	IsAudience
)

// CapabilitySet is a bitmask of capabilities.
type CapabilitySet uint8

func (c CapabilitySet) Has(capability Capability) bool {
	return c&CapabilitySet(capability) != 0
}

var capabilityTable = map[PlayerState]CapabilitySet{
	StateGhost:      set(CanOperate, CanMove),
	StatePlaying:    set(CanCollide, CanSound, CanCount, CanOperate, CanMove, CanDrop),
	StateDead:       set(IsAudience),
	StateInvincible: set(CanSound, CanCount, CanOperate, CanMove),
	StateStaging:    set(CanCount, IsAudience),
}

func set(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

// Capabilities returns the capability set of a state. Unknown states grant nothing.
func (s PlayerState) Capabilities() CapabilitySet {
	return capabilityTable[s]
}

// Can reports whether a player in state s may do c.
func (s PlayerState) Can(c Capability) bool {
	return s.Capabilities().Has(c)
}

var transitions = map[PlayerState][]PlayerState{
	StateInvincible: {StatePlaying},
	StatePlaying:    {StateStaging},
	StateStaging:    {StateDead},
	StateDead:       {StateInvincible, StateGhost},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to PlayerState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
