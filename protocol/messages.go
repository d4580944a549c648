// Package protocol defines the closed set of broadcast messages exchanged by
// game instances and the envelopes the relay wraps them in.
package protocol

import (
	"snake-arena/constants"
	"snake-arena/models"
)

// Message is one broadcast event. The set is closed: only types in this
// package implement it.
type Message interface {
	Tag() string
	Dispatch(from string, h Handler)
	sealed()
}

// Handler has one method per message. The orchestrator implements it twice,
// once for every instance and once for the authoritative instance only.
type Handler interface {
	StartRecruitment(from string, m StartRecruitment)
	WaitRecruitment(from string, m WaitRecruitment)
	JoinRequest(from string, m JoinRequest)
	LotteryResult(from string, m LotteryResult)
	StartGame(from string, m StartGame)
	RestartRecruitment(from string, m RestartRecruitment)
	InitMainGame(from string, m InitMainGame)
	SetPlaying(from string, m SetPlaying)
	CountDown(from string, m CountDown)
	Animation(from string, m Animation)
	ChangeUserTouchState(from string, m ChangeUserTouchState)
	PlayersInConflict(from string, m PlayersInConflict)
	DestroySnake(from string, m DestroySnake)
	RespawnSnake(from string, m RespawnSnake)
	RespawnAngelSnake(from string, m RespawnAngelSnake)
	RespawnJewel(from string, m RespawnJewel)
	EatenFoods(from string, m EatenFoods)
	UpdateJewelOwner(from string, m UpdateJewelOwner)
	RankingAccountData(from string, m RankingAccountData)
	UpdateRemainTime(from string, m UpdateRemainTime)
	PreventUsertouch(from string, m PreventUsertouch)
	FinishGame(from string, m FinishGame)
	StartResult(from string, m StartResult)
	InitResult(from string, m InitResult)
	NextRankingType(from string, m NextRankingType)
	ChangeScrollSpeed(from string, m ChangeScrollSpeed)
}

type StartRecruitment struct {
	BroadcasterUser models.AccountData `json:"broadcasterUser"`
}

type WaitRecruitment struct {
	StartTime     uint64             `json:"startTime"`
	BroadcasterID string             `json:"broadcasterId"`
	Broadcaster   models.AccountData `json:"broadcaster"`
}

type JoinRequest struct {
	JoinUser models.AccountData `json:"joinUser"`
}

type LotteryResult struct {
	PlayerList []models.PlayerEntry `json:"playerList"`
	NumPlayers int                  `json:"numPlayers"`
}

type StartGame struct{}

type RestartRecruitment struct{}

type InitMainGame struct {
	PlayerInitLayoutList []models.PlayerLayout `json:"playerInitLayoutList"`
}

type SetPlaying struct {
	Scope    models.Scope `json:"scope"`
	PlayerID string       `json:"playerId,omitempty"`
}

type CountDown struct {
	CountDownType models.CountDownType `json:"countDownType"`
}

type Animation struct {
	AnimationType models.AnimationType `json:"animationType"`
	Scope         models.Scope         `json:"scope"`
	PlayerID      string               `json:"playerId,omitempty"`
}

// ChangeUserTouchState targets ID when set, the sender otherwise.
type ChangeUserTouchState struct {
	ID           string            `json:"id,omitempty"`
	NewDirection *int              `json:"newDirection,omitempty"`
	NewState     models.TouchState `json:"newState"`
	CanPlaySE    *bool             `json:"canPlaySE,omitempty"`
}

type PlayersInConflict struct {
	PlayersInConflict []models.CollisionInfo `json:"playersInConflict"`
}

type DestroySnake struct {
	DeadPlayerID string `json:"deadPlayerId"`
}

// RespawnSnake respawns the sender.
type RespawnSnake struct{}

type RespawnAngelSnake struct{}

type RespawnJewel struct {
	Position models.Vec `json:"position"`
}

type EatenFoods struct {
	EatenFoodInfo        []models.EatenFood `json:"eatenFoodInfo"`
	NoEatenFoodIndexList []int              `json:"noEatenFoodIndexList"`
	FieldRadius          float64            `json:"fieldRadius"`
}

type UpdateJewelOwner struct {
	OwnerID string `json:"ownerId"`
}

type RankingAccountData struct {
	RankingAccountData []models.RankedCount `json:"rankingAccountData"`
}

type UpdateRemainTime struct {
	RemainTime int `json:"remainTime"`
}

type PreventUsertouch struct {
	PlayerID    string             `json:"playerId"`
	PreventType models.PreventType `json:"preventType"`
}

type FinishGame struct{}

type StartResult struct{}

type InitResult struct {
	LengthRankingPlayerIDList []models.RankedCount `json:"lengthRankingPlayerIdList"`
	KillRankingPlayerIDList   []models.RankedCount `json:"killRankingPlayerIdList"`
	JewelOwnerID              string               `json:"jewelOwnerId"`
}

type NextRankingType struct {
	NextRankingType models.RankingType `json:"nextRankingType"`
}

type ChangeScrollSpeed struct {
	RankingType models.RankingType `json:"rankingType"`
	SpeedType   models.ScrollSpeed `json:"speedType"`
}

func (StartRecruitment) Tag() string     { return constants.MSG_START_RECRUITMENT }
func (WaitRecruitment) Tag() string      { return constants.MSG_WAIT_RECRUITMENT }
func (JoinRequest) Tag() string          { return constants.MSG_JOIN_REQUEST }
func (LotteryResult) Tag() string        { return constants.MSG_LOTTERY_RESULT }
func (StartGame) Tag() string            { return constants.MSG_START_GAME }
func (RestartRecruitment) Tag() string   { return constants.MSG_RESTART_RECRUITMENT }
func (InitMainGame) Tag() string         { return constants.MSG_INIT_MAIN_GAME }
func (SetPlaying) Tag() string           { return constants.MSG_SET_PLAYING }
func (CountDown) Tag() string            { return constants.MSG_COUNT_DOWN }
func (Animation) Tag() string            { return constants.MSG_ANIMATION }
func (ChangeUserTouchState) Tag() string { return constants.MSG_CHANGE_USER_TOUCH_STATE }
func (PlayersInConflict) Tag() string    { return constants.MSG_PLAYERS_IN_CONFLICT }
func (DestroySnake) Tag() string         { return constants.MSG_DESTROY_SNAKE }
func (RespawnSnake) Tag() string         { return constants.MSG_RESPAWN_SNAKE }
func (RespawnAngelSnake) Tag() string    { return constants.MSG_RESPAWN_ANGEL_SNAKE }
func (RespawnJewel) Tag() string         { return constants.MSG_RESPAWN_JEWEL }
func (EatenFoods) Tag() string           { return constants.MSG_EATEN_FOODS }
func (UpdateJewelOwner) Tag() string     { return constants.MSG_UPDATE_JEWEL_OWNER }
func (RankingAccountData) Tag() string   { return constants.MSG_RANKING_ACCOUNT_DATA }
func (UpdateRemainTime) Tag() string     { return constants.MSG_UPDATE_REMAIN_TIME }
func (PreventUsertouch) Tag() string     { return constants.MSG_PREVENT_USERTOUCH }
func (FinishGame) Tag() string           { return constants.MSG_FINISH_GAME }
func (StartResult) Tag() string          { return constants.MSG_START_RESULT }
func (InitResult) Tag() string           { return constants.MSG_INIT_RESULT }
func (NextRankingType) Tag() string      { return constants.MSG_NEXT_RANKING_TYPE }
func (ChangeScrollSpeed) Tag() string    { return constants.MSG_CHANGE_SCROLL_SPEED }

func (m StartRecruitment) Dispatch(from string, h Handler)     { h.StartRecruitment(from, m) }
func (m WaitRecruitment) Dispatch(from string, h Handler)      { h.WaitRecruitment(from, m) }
func (m JoinRequest) Dispatch(from string, h Handler)          { h.JoinRequest(from, m) }
func (m LotteryResult) Dispatch(from string, h Handler)        { h.LotteryResult(from, m) }
func (m StartGame) Dispatch(from string, h Handler)            { h.StartGame(from, m) }
func (m RestartRecruitment) Dispatch(from string, h Handler)   { h.RestartRecruitment(from, m) }
func (m InitMainGame) Dispatch(from string, h Handler)         { h.InitMainGame(from, m) }
func (m SetPlaying) Dispatch(from string, h Handler)           { h.SetPlaying(from, m) }
func (m CountDown) Dispatch(from string, h Handler)            { h.CountDown(from, m) }
func (m Animation) Dispatch(from string, h Handler)            { h.Animation(from, m) }
func (m ChangeUserTouchState) Dispatch(from string, h Handler) { h.ChangeUserTouchState(from, m) }
func (m PlayersInConflict) Dispatch(from string, h Handler)    { h.PlayersInConflict(from, m) }
func (m DestroySnake) Dispatch(from string, h Handler)         { h.DestroySnake(from, m) }
func (m RespawnSnake) Dispatch(from string, h Handler)         { h.RespawnSnake(from, m) }
func (m RespawnAngelSnake) Dispatch(from string, h Handler)    { h.RespawnAngelSnake(from, m) }
func (m RespawnJewel) Dispatch(from string, h Handler)         { h.RespawnJewel(from, m) }
func (m EatenFoods) Dispatch(from string, h Handler)           { h.EatenFoods(from, m) }
func (m UpdateJewelOwner) Dispatch(from string, h Handler)     { h.UpdateJewelOwner(from, m) }
func (m RankingAccountData) Dispatch(from string, h Handler)   { h.RankingAccountData(from, m) }
func (m UpdateRemainTime) Dispatch(from string, h Handler)     { h.UpdateRemainTime(from, m) }
func (m PreventUsertouch) Dispatch(from string, h Handler)     { h.PreventUsertouch(from, m) }
func (m FinishGame) Dispatch(from string, h Handler)           { h.FinishGame(from, m) }
func (m StartResult) Dispatch(from string, h Handler)          { h.StartResult(from, m) }
func (m InitResult) Dispatch(from string, h Handler)           { h.InitResult(from, m) }
func (m NextRankingType) Dispatch(from string, h Handler)      { h.NextRankingType(from, m) }
func (m ChangeScrollSpeed) Dispatch(from string, h Handler)    { h.ChangeScrollSpeed(from, m) }

func (StartRecruitment) sealed()     {}
func (WaitRecruitment) sealed()      {}
func (JoinRequest) sealed()          {}
func (LotteryResult) sealed()        {}
func (StartGame) sealed()            {}
func (RestartRecruitment) sealed()   {}
func (InitMainGame) sealed()         {}
func (SetPlaying) sealed()           {}
func (CountDown) sealed()            {}
func (Animation) sealed()            {}
func (ChangeUserTouchState) sealed() {}
func (PlayersInConflict) sealed()    {}
func (DestroySnake) sealed()         {}
func (RespawnSnake) sealed()         {}
func (RespawnAngelSnake) sealed()    {}
func (RespawnJewel) sealed()         {}
func (EatenFoods) sealed()           {}
func (UpdateJewelOwner) sealed()     {}
func (RankingAccountData) sealed()   {}
func (UpdateRemainTime) sealed()     {}
func (PreventUsertouch) sealed()     {}
func (FinishGame) sealed()           {}
func (StartResult) sealed()          {}
func (InitResult) sealed()           {}
func (NextRankingType) sealed()      {}
func (ChangeScrollSpeed) sealed()    {}
