package models

import (
	"math"
	"time"
)

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec       { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec) Scale(k float64) Vec { return Vec{X: v.X * k, Y: v.Y * k} }

// Norm2 is the squared distance from the origin.
func (v Vec) Norm2() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vec) Norm() float64  { return math.Sqrt(v.Norm2()) }

type AccountData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPremium bool   `json:"isPremium"`
}

// PlayerEntry is one lottery winner as announced to every instance.
type PlayerEntry struct {
	ID            string      `json:"id"`
	User          AccountData `json:"user"`
	SnakeType     string      `json:"snakeType"`
	IsBroadcaster bool        `json:"isBroadcaster"`
}

type PlayerLayout struct {
	PlayerID  string     `json:"playerId"`
	Position  Vec        `json:"position"`
	State     TouchState `json:"state"`
	Direction int        `json:"direction"`
	Name      string     `json:"name"`
}

type CollisionInfo struct {
	DeadPlayerID   string `json:"deadPlayerId"`
	KillerPlayerID string `json:"killerPlayerId"`
}

type EatenFood struct {
	EaterID    string `json:"eaterId"`
	EatenIndex int    `json:"eatenIndex"`
}

type RankedCount struct {
	PlayerID string `json:"playerId"`
	Count    int    `json:"count"`
}

type ResultParams struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	IsPremium   bool   `json:"isPremium"`
	LengthCount int    `json:"lengthCount"`
	LengthRank  int    `json:"lengthRank"`
	Words       string `json:"words"`
	KillCount   int    `json:"killCount"`
	KillRank    int    `json:"killRank"`
	HaveJewel   bool   `json:"haveJewel"`
}

type ResultEntry struct {
	Rank   int          `json:"rank"`
	UserID string       `json:"userId"`
	Score  int          `json:"score"`
	Params ResultParams `json:"params"`
}

type ResultLog struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId"`
	Data      []ResultEntry `json:"data"`
}

// Client is one connection attached to the relay.
type Client struct {
	ID          string      `json:"id"`
	Send        chan []byte `json:"-"`
	Name        string      `json:"name"`
	Premium     bool        `json:"premium"`
	Broadcaster bool        `json:"broadcaster"`
	Active      bool        `json:"active"`
	JoinedAt    time.Time   `json:"joined_at"`
}

type TouchState string

const (
	TouchOnPoint     TouchState = "onPoint"
	TouchNoPoint     TouchState = "noPoint"
	TouchOnDoubleTap TouchState = "onDoubleTap"
	TouchOnHold      TouchState = "onHold"
)

type Scope string

const (
	ScopeAll Scope = "All"
	ScopeOne Scope = "One"
)

type AnimationType string

const (
	AnimationBlinking          AnimationType = "Blinking"
	AnimationToBroadcasterView AnimationType = "ToBroadcasterView"
)

type CountDownType string

const (
	CountDownStart  CountDownType = "Start"
	CountDownFinish CountDownType = "Finish"
	CountDownOne    CountDownType = "One"
	CountDownTwo    CountDownType = "Two"
	CountDownThree  CountDownType = "Three"
)

type PreventType string

const (
	PreventTouchState PreventType = "TouchState"
	PreventNone       PreventType = "None"
)

type RankingType string

const (
	RankingLength RankingType = "Length"
	RankingKill   RankingType = "Kill"
)

// Other returns the ranking shown after r.
func (r RankingType) Other() RankingType {
	if r == RankingKill {
		return RankingLength
	}
	return RankingKill
}

type ScrollSpeed string

const (
	ScrollNormal ScrollSpeed = "Normal"
	ScrollHigh   ScrollSpeed = "High"
)
