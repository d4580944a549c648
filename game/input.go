package game

import (
	"math"

	"snake-arena/models"
	"snake-arena/protocol"
)

// Input turns local pointer gestures into touch state messages for the
// instance's own player and runs the dash gauge. Points are relative to the
// screen center.
type Input struct {
	gm            *Manager
	lastPointUp   int64
	startDoubleAt int64
	gauge         float64
	holdSent      bool
}

func newInput(gm *Manager) *Input {
	full := gm.dashTicks()
	return &Input{
		gm:            gm,
		lastPointUp:   -int64(full),
		startDoubleAt: -int64(full),
		gauge:         full,
	}
}

func (gm *Manager) dashTicks() float64 {
	return gm.cfg.Snake.DashingTime * float64(gm.ctx.FPS)
}

// directionFromPoint quantizes the angle of p into one of fineness directions.
func directionFromPoint(p models.Vec, fineness int) int {
	deg := math.Atan2(-p.Y, -p.X) * 180 / math.Pi
	unit := 360 / float64(fineness)
	d := int(math.Floor((deg+180)/unit)) % fineness
	if d < 0 {
		d += fineness
	}
	return d
}

func (in *Input) self() (*Player, bool) {
	p, ok := in.gm.players[in.gm.selfID]
	return p, ok
}

func (in *Input) age() int64 { return int64(in.gm.lastAge) }

// Gauge is the remaining dash budget in ticks.
func (in *Input) Gauge() float64 {
	in.gm.Mutex.Lock()
	defer in.gm.Mutex.Unlock()
	return in.gauge
}

// PointDown starts steering towards p. A press soon after the last release
// starts a dash.
func (in *Input) PointDown(p models.Vec) {
	in.gm.Mutex.Lock()
	defer in.gm.Mutex.Unlock()

	me, ok := in.self()
	if !ok || me.Prevent == models.PreventTouchState || !me.can(models.CanOperate) {
		return
	}
	dir := directionFromPoint(p, in.gm.cfg.Input.RadianFineness)
	state := models.TouchOnPoint
	window := in.gm.cfg.Input.DoublePointDuration * float64(in.gm.ctx.FPS)
	if float64(in.age()-in.lastPointUp) <= window {
		in.startDoubleAt = in.age()
		state = models.TouchOnDoubleTap
	}
	in.gm.publish(protocol.ChangeUserTouchState{ID: in.gm.selfID, NewDirection: &dir, NewState: state})
}

// PointMove steers by the drag delta from the press point.
func (in *Input) PointMove(delta models.Vec) {
	in.gm.Mutex.Lock()
	defer in.gm.Mutex.Unlock()

	me, ok := in.self()
	if !ok || me.Touch == models.TouchOnDoubleTap || me.Touch == models.TouchOnHold || !me.can(models.CanOperate) {
		return
	}
	if me.Prevent == models.PreventTouchState {
		return
	}
	if delta.Norm() <= in.gm.cfg.Input.PointMoveDistance {
		return
	}
	dir := directionFromPoint(delta, in.gm.cfg.Input.RadianFineness)
	if dir == me.Direction {
		return
	}
	in.gm.publish(protocol.ChangeUserTouchState{ID: in.gm.selfID, NewDirection: &dir, NewState: models.TouchOnPoint})
}

func (in *Input) PointUp() {
	in.gm.Mutex.Lock()
	defer in.gm.Mutex.Unlock()

	me, ok := in.self()
	if !ok || me.Prevent == models.PreventTouchState {
		return
	}
	in.lastPointUp = in.age()
	in.gm.publish(protocol.ChangeUserTouchState{ID: in.gm.selfID, NewState: models.TouchNoPoint})
}

// RequestRespawn asks for a new snake. It is only sent while dead with
// budget left.
func (in *Input) RequestRespawn() bool {
	in.gm.Mutex.Lock()
	defer in.gm.Mutex.Unlock()

	me, ok := in.self()
	if !ok || in.gm.gameOver || me.State != models.StateDead {
		return false
	}
	if me.RespawnTimes > 0 {
		in.gm.publish(protocol.RespawnSnake{})
		return true
	}
	if me.IsBroadcaster {
		in.gm.publish(protocol.RespawnAngelSnake{})
		return true
	}
	return false
}

func (in *Input) reset() {
	in.gauge = in.gm.dashTicks()
	in.holdSent = false
}

// tick drains the gauge while dashing and refills it otherwise.
func (in *Input) tick() {
	if in.gm.phase != PhaseMainGame {
		return
	}
	me, ok := in.self()
	if !ok {
		return
	}
	full := in.gm.dashTicks()
	if me.Touch != models.TouchOnDoubleTap {
		in.holdSent = false
		in.gauge = math.Min(full, in.gauge+in.gm.cfg.Snake.DashRecovery)
		return
	}
	if !in.holdSent && (in.gauge <= 0 || float64(in.age()-in.startDoubleAt) > full) {
		in.holdSent = true
		in.gm.publish(protocol.ChangeUserTouchState{ID: in.gm.selfID, NewState: models.TouchOnHold})
	}
	in.gauge = math.Max(0, in.gauge-1)
}
