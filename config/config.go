// Package config loads process and session settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"snake-arena/constants"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	Mode         string        `env:"ARENA_MODE" envDefault:"relay"`
	RelayURL     string        `env:"ARENA_RELAY_URL" envDefault:"ws://localhost:8080/ws"`
	JWTSecret    string        `env:"ARENA_JWT_SECRET" envDefault:"snake-arena-dev-secret"`
	TokenTTL     time.Duration `env:"ARENA_TOKEN_TTL" envDefault:"24h"`
	ResultDB     string        `env:"ARENA_RESULT_DB" envDefault:"arena-results.db"`
	ICEURLs      []string      `env:"ARENA_ICE_URLS" envDefault:"stun:stun.l.google.com:19302"`
	RelayStartOn int           `env:"ARENA_RELAY_START_ON" envDefault:"1"`
	Instance     Instance      `envPrefix:"ARENA_INSTANCE_"`
	Session      Session       `envPrefix:"ARENA_"`
}

// Instance describes the identity a headless instance asks the relay for.
type Instance struct {
	Name        string `env:"NAME" envDefault:"player"`
	Premium     bool   `env:"PREMIUM" envDefault:"false"`
	Broadcaster bool   `env:"BROADCASTER" envDefault:"false"`
	Autopilot   bool   `env:"AUTOPILOT" envDefault:"true"`
	Seed        int64  `env:"SEED" envDefault:"0"`
}

// Session holds the parameters every instance must simulate with. The relay
// ships its copy inside the welcome message.
type Session struct {
	EntrySec      int     `env:"ENTRY_SEC" envDefault:"30" json:"entrySec"`
	NumPlayers    int     `env:"NUM_PLAYERS" envDefault:"20" json:"numPlayers"`
	HowtoMessage  string  `env:"HOWTO_MESSAGE" json:"howtoMessage"`
	PremiumWeight float64 `env:"PREMIUM_WEIGHT" envDefault:"2" json:"premiumWeight"`
	FPS           int     `env:"FPS" envDefault:"30" json:"fps"`

	Field  Field  `json:"field"`
	Food   Food   `json:"food"`
	Snake  Snake  `json:"snake"`
	Time   Time   `json:"time"`
	Input  Input  `json:"input"`
	Audio  Audio  `json:"audio"`
	Debug  Debug  `envPrefix:"DEBUG_" json:"debug"`
	Widths Widths `json:"widths"`
}

type Field struct {
	Radius             []float64 `env:"FIELD_RADIUS" envDefault:"2400,2000,1600,1200,800" json:"radius"`
	NarrowRadiusPerSec float64   `env:"FIELD_NARROW_RADIUS_PER_SEC" envDefault:"10" json:"narrowRadiusPerSec"`
}

type Food struct {
	Interval int      `env:"FOOD_INTERVAL" envDefault:"1000" json:"interval"`
	Volume   []int    `env:"FOOD_VOLUME" envDefault:"8,6,5,4,3" json:"volume"`
	Chars    []string `env:"FOOD_CHARS" envDefault:"あ,い,う,え,お,か,き,く,け,こ,さ,し,す,せ,そ,た,ち,つ,て,と,な,に,ぬ,ね,の,は,ひ,ふ,へ,ほ,ま,み,む,め,も,や,ゆ,よ,ら,り,る,れ,ろ,わ,を,ん" json:"chars"`
}

type Snake struct {
	DashingTime         float64 `env:"SNAKE_DASHING_TIME" envDefault:"3" json:"dashingTime"`
	BaseSpeed           float64 `env:"SNAKE_BASE_SPEED" envDefault:"6" json:"baseSpeed"`
	MaxSpeedScale       int     `env:"SNAKE_MAX_SPEED_SCALE" envDefault:"2" json:"maxSpeedScale"`
	DashRecovery        float64 `env:"SNAKE_DASH_RECOVERY" envDefault:"0.5" json:"dashRecovery"`
	MaxNameLength       int     `env:"SNAKE_MAX_NAME_LENGTH" envDefault:"6" json:"maxNameLength"`
	MaxKnotLength       int     `env:"SNAKE_MAX_KNOT_LENGTH" envDefault:"30" json:"maxKnotLength"`
	RespawnTimes        int     `env:"SNAKE_RESPAWN_TIMES" envDefault:"2" json:"respawnTimes"`
	PremiumRespawnTimes int     `env:"SNAKE_PREMIUM_RESPAWN_TIMES" envDefault:"3" json:"premiumRespawnTimes"`
	InvincibleTime      int     `env:"SNAKE_INVINCIBLE_TIME" envDefault:"5000" json:"invincibleTime"`
}

type Widths struct {
	Head  float64 `env:"SNAKE_HEAD_WIDTH" envDefault:"70" json:"head"`
	Knot  float64 `env:"SNAKE_KNOT_WIDTH" envDefault:"60" json:"knot"`
	Food  float64 `env:"FOOD_WIDTH" envDefault:"50" json:"food"`
	Jewel float64 `env:"JEWEL_WIDTH" envDefault:"60" json:"jewel"`
}

type Time struct {
	IsTimeBased bool `env:"TIME_IS_TIME_BASED" envDefault:"true" json:"isTimeBased"`
	Limit       int  `env:"TIME_LIMIT" envDefault:"180" json:"limit"`
}

type Input struct {
	PointMoveDistance   float64 `env:"INPUT_POINT_MOVE_DISTANCE" envDefault:"10" json:"pointMoveDistance"`
	DoublePointDuration float64 `env:"INPUT_DOUBLE_POINT_DURATION" envDefault:"0.3" json:"doublePointDuration"`
	RadianFineness      int     `env:"INPUT_RADIAN_FINENESS" envDefault:"32" json:"radianFineness"`
}

type Audio struct {
	Volume float64 `env:"AUDIO_VOLUME" envDefault:"0.5" json:"volume"`
}

type Debug struct {
	SkipLottery                    bool     `env:"SKIP_LOTTERY" envDefault:"false" json:"skipLottery"`
	PlayerNames                    []string `env:"PLAYER_NAMES" json:"playerNames"`
	AudioVolume                    float64  `env:"AUDIO_VOLUME" envDefault:"-1" json:"audioVolume"`
	ForcedTier                     int      `env:"FORCED_TIER" envDefault:"-1" json:"forcedTier"`
	BanEndingGameByNumberOfPlayers bool     `env:"BAN_ENDING_GAME_BY_NUMBER_OF_PLAYERS" envDefault:"false" json:"banEndingGameByNumberOfPlayers"`
}

var (
	ErrInvalidMode    = errors.New("mode must be relay or instance")
	ErrInvalidSession = errors.New("invalid session parameters")
)

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Mode != "relay" && c.Mode != "instance" {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.RelayStartOn < 1 {
		return fmt.Errorf("%w: relay start count %d", ErrInvalidSession, c.RelayStartOn)
	}
	return c.Session.Validate()
}

func (s Session) Validate() error {
	switch {
	case s.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalidSession, s.FPS)
	case len(s.Field.Radius) != constants.TIER_COUNT:
		return fmt.Errorf("%w: want %d field radii, got %d", ErrInvalidSession, constants.TIER_COUNT, len(s.Field.Radius))
	case len(s.Food.Volume) != constants.TIER_COUNT:
		return fmt.Errorf("%w: want %d food volumes, got %d", ErrInvalidSession, constants.TIER_COUNT, len(s.Food.Volume))
	case s.NumPlayers < 1 || s.NumPlayers > constants.MAX_PLAYERS_CAP:
		return fmt.Errorf("%w: num players %d outside 1..%d", ErrInvalidSession, s.NumPlayers, constants.MAX_PLAYERS_CAP)
	case s.Snake.MaxSpeedScale < 1:
		return fmt.Errorf("%w: max speed scale %d", ErrInvalidSession, s.Snake.MaxSpeedScale)
	case s.Input.RadianFineness < 4:
		return fmt.Errorf("%w: radian fineness %d", ErrInvalidSession, s.Input.RadianFineness)
	case s.Debug.ForcedTier < -1 || s.Debug.ForcedTier >= constants.TIER_COUNT:
		return fmt.Errorf("%w: forced tier %d", ErrInvalidSession, s.Debug.ForcedTier)
	case len(s.Food.Chars) == 0:
		return fmt.Errorf("%w: no food chars", ErrInvalidSession)
	}
	return nil
}

// EffectiveAudioVolume is the debug override when set, the configured volume otherwise.
func (s Session) EffectiveAudioVolume() float64 {
	if s.Debug.AudioVolume >= 0 {
		return s.Debug.AudioVolume
	}
	return s.Audio.Volume
}

// Default returns the session defaults without reading the environment.
func Default() Session {
	var s Session
	if err := env.ParseWithOptions(&s, env.Options{
		Prefix:      "ARENA_",
		Environment: map[string]string{},
	}); err != nil {
		panic(err)
	}
	return s
}
