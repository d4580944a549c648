package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"snake-arena/config"
	"snake-arena/constants"
)

// Downlink envelope tags sent by the relay.
const (
	MsgWelcome = "welcome"
	MsgFrame   = "frame"
)

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrEmptyEnvelope  = errors.New("empty envelope")
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// Event is one uplink envelope as ordered and stamped by the relay.
type Event struct {
	Seq  uint64 `json:"seq"`
	From string `json:"from"`
	Envelope
}

// Frame is everything the relay received during one tick.
type Frame struct {
	Age    uint64  `json:"age"`
	Events []Event `json:"events,omitempty"`
}

type Welcome struct {
	SelfID    string         `json:"selfId"`
	SessionID string         `json:"sessionId"`
	Active    bool           `json:"active"`
	Seed      int64          `json:"seed"`
	FPS       int            `json:"fps"`
	Session   config.Session `json:"session"`
}

func EncodeEnvelope(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode envelope: %w", ErrEmptyEnvelope)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// Encode wraps m in its envelope.
func Encode(m Message) ([]byte, error) {
	return EncodeEnvelope(m.Tag(), m)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyEnvelope
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, ErrEmptyEnvelope
	}
	return e, nil
}

// DecodePayload reads env's payload as T. Empty payloads give T's zero value.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 || string(env.P) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", env.T, err)
	}
	return out, nil
}

func decodeAs[T Message](env Envelope) (Message, error) {
	m, err := DecodePayload[T](env)
	if err != nil {
		return nil, err
	}
	return m, nil
}

var decoders = map[string]func(Envelope) (Message, error){
	constants.MSG_START_RECRUITMENT:       decodeAs[StartRecruitment],
	constants.MSG_WAIT_RECRUITMENT:        decodeAs[WaitRecruitment],
	constants.MSG_JOIN_REQUEST:            decodeAs[JoinRequest],
	constants.MSG_LOTTERY_RESULT:          decodeAs[LotteryResult],
	constants.MSG_START_GAME:              decodeAs[StartGame],
	constants.MSG_RESTART_RECRUITMENT:     decodeAs[RestartRecruitment],
	constants.MSG_INIT_MAIN_GAME:          decodeAs[InitMainGame],
	constants.MSG_SET_PLAYING:             decodeAs[SetPlaying],
	constants.MSG_COUNT_DOWN:              decodeAs[CountDown],
	constants.MSG_ANIMATION:               decodeAs[Animation],
	constants.MSG_CHANGE_USER_TOUCH_STATE: decodeAs[ChangeUserTouchState],
	constants.MSG_PLAYERS_IN_CONFLICT:     decodeAs[PlayersInConflict],
	constants.MSG_DESTROY_SNAKE:           decodeAs[DestroySnake],
	constants.MSG_RESPAWN_SNAKE:           decodeAs[RespawnSnake],
	constants.MSG_RESPAWN_ANGEL_SNAKE:     decodeAs[RespawnAngelSnake],
	constants.MSG_RESPAWN_JEWEL:           decodeAs[RespawnJewel],
	constants.MSG_EATEN_FOODS:             decodeAs[EatenFoods],
	constants.MSG_UPDATE_JEWEL_OWNER:      decodeAs[UpdateJewelOwner],
	constants.MSG_RANKING_ACCOUNT_DATA:    decodeAs[RankingAccountData],
	constants.MSG_UPDATE_REMAIN_TIME:      decodeAs[UpdateRemainTime],
	constants.MSG_PREVENT_USERTOUCH:       decodeAs[PreventUsertouch],
	constants.MSG_FINISH_GAME:             decodeAs[FinishGame],
	constants.MSG_START_RESULT:            decodeAs[StartResult],
	constants.MSG_INIT_RESULT:             decodeAs[InitResult],
	constants.MSG_NEXT_RANKING_TYPE:       decodeAs[NextRankingType],
	constants.MSG_CHANGE_SCROLL_SPEED:     decodeAs[ChangeScrollSpeed],
}

// Decode turns an envelope back into its message.
func Decode(env Envelope) (Message, error) {
	dec, ok := decoders[env.T]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.T)
	}
	return dec(env)
}

// Tags lists every known message tag.
func Tags() []string {
	tags := make([]string, 0, len(decoders))
	for t := range decoders {
		tags = append(tags, t)
	}
	return tags
}
