package protocol

import "snake-arena/constants"

// Origin says who may put a message on the wire.
type Origin int

const (
	// OriginAny messages are sent by any participant about itself.
	OriginAny Origin = iota
	// OriginBroadcaster messages drive the session and need the broadcaster claim.
	OriginBroadcaster
	// OriginActive messages are authoritative outcomes and come from the active instance.
	OriginActive
)

var origins = map[string]Origin{
	constants.MSG_START_RECRUITMENT:       OriginBroadcaster,
	constants.MSG_NEXT_RANKING_TYPE:       OriginBroadcaster,
	constants.MSG_CHANGE_SCROLL_SPEED:     OriginBroadcaster,
	constants.MSG_RESPAWN_ANGEL_SNAKE:     OriginBroadcaster,
	constants.MSG_JOIN_REQUEST:            OriginAny,
	constants.MSG_CHANGE_USER_TOUCH_STATE: OriginAny,
	constants.MSG_RESPAWN_SNAKE:           OriginAny,
	constants.MSG_WAIT_RECRUITMENT:        OriginActive,
	constants.MSG_LOTTERY_RESULT:          OriginActive,
	constants.MSG_START_GAME:              OriginActive,
	constants.MSG_RESTART_RECRUITMENT:     OriginActive,
	constants.MSG_INIT_MAIN_GAME:          OriginActive,
	constants.MSG_SET_PLAYING:             OriginActive,
	constants.MSG_COUNT_DOWN:              OriginActive,
	constants.MSG_ANIMATION:               OriginActive,
	constants.MSG_PLAYERS_IN_CONFLICT:     OriginActive,
	constants.MSG_DESTROY_SNAKE:           OriginActive,
	constants.MSG_RESPAWN_JEWEL:           OriginActive,
	constants.MSG_EATEN_FOODS:             OriginActive,
	constants.MSG_UPDATE_JEWEL_OWNER:      OriginActive,
	constants.MSG_RANKING_ACCOUNT_DATA:    OriginActive,
	constants.MSG_UPDATE_REMAIN_TIME:      OriginActive,
	constants.MSG_PREVENT_USERTOUCH:       OriginActive,
	constants.MSG_FINISH_GAME:             OriginActive,
	constants.MSG_START_RESULT:            OriginActive,
	constants.MSG_INIT_RESULT:             OriginActive,
}

// OriginOf returns the sender requirement of tag. Unknown tags report false.
func OriginOf(tag string) (Origin, bool) {
	o, ok := origins[tag]
	return o, ok
}

// Allowed reports whether a sender with the given claims may publish tag.
func Allowed(tag string, broadcaster, active bool) bool {
	o, ok := origins[tag]
	if !ok {
		return false
	}
	switch o {
	case OriginBroadcaster:
		return broadcaster
	case OriginActive:
		return active
	default:
		return true
	}
}

// Permit reports whether from may publish env. Only the active instance may
// send a touch state on behalf of another player.
func Permit(env Envelope, from string, broadcaster, active bool) bool {
	if !Allowed(env.T, broadcaster, active) {
		return false
	}
	if env.T != constants.MSG_CHANGE_USER_TOUCH_STATE || active {
		return true
	}
	m, err := DecodePayload[ChangeUserTouchState](env)
	if err != nil {
		return false
	}
	return m.ID == "" || m.ID == from
}
