package constants

import "time"

const (
	// Relay transport
	WRITE_WAIT        = 10 * time.Second
	PONG_WAIT         = 60 * time.Second
	PING_PERIOD       = (PONG_WAIT * 9) / 10
	MAX_MESSAGE_SIZE  = 64 * 1024
	SEND_BUFFER       = 256
	DATA_CHANNEL_NAME = "game"

	// Session timing
	LOTTERY_BUFFER        = 3000 * time.Millisecond
	START_GAME_BUFFER     = 3000 * time.Millisecond
	RESTART_BUFFER        = 3000 * time.Millisecond
	RESULT_DELAY          = 5000 * time.Millisecond
	TO_BROADCASTER_DELAY  = 3000 * time.Millisecond
	REBORN_EFFECT_TIME    = 3500 * time.Millisecond
	EXPLOSION_STEP        = 100 * time.Millisecond
	EXPLOSION_TAIL        = 800 * time.Millisecond
	REMAIN_TIME_INTERVAL  = time.Second
	FIELD_SPAWN_MARGIN    = 50
	FOOD_DESPAWN_MARGIN   = 100
	MAX_FOOD_LIST_LENGTH  = 25
	SKIP_LOTTERY_SEED     = 2525
	SNAKE_TYPES           = "ABCDEFGHI"
	HISTORY_DISTANCE_BASE = 90
	HISTORY_MARGIN        = 5
	BLANK_WORD            = "　"
	MAX_PLAYERS_CAP       = 100
	TIER_COUNT            = 5

	// Recruitment messages
	MSG_START_RECRUITMENT   = "startRecruitment"
	MSG_WAIT_RECRUITMENT    = "waitRecruitment"
	MSG_JOIN_REQUEST        = "joinRequest"
	MSG_LOTTERY_RESULT      = "lotteryResult"
	MSG_START_GAME          = "startGame"
	MSG_RESTART_RECRUITMENT = "restartRecruitment"

	// Main game messages
	MSG_INIT_MAIN_GAME          = "initMainGame"
	MSG_SET_PLAYING             = "setPlaying"
	MSG_COUNT_DOWN              = "countDown"
	MSG_ANIMATION               = "animation"
	MSG_CHANGE_USER_TOUCH_STATE = "changeUserTouchState"
	MSG_PLAYERS_IN_CONFLICT     = "sendPlayersInConflict"
	MSG_DESTROY_SNAKE           = "destroySnake"
	MSG_RESPAWN_SNAKE           = "respawnSnake"
	MSG_RESPAWN_ANGEL_SNAKE     = "respawnBroadcasterAngelSnake"
	MSG_RESPAWN_JEWEL           = "respawnJewel"
	MSG_EATEN_FOODS             = "eatenFoods"
	MSG_UPDATE_JEWEL_OWNER      = "updateJewelOwner"
	MSG_RANKING_ACCOUNT_DATA    = "rankingAccountData"
	MSG_UPDATE_REMAIN_TIME      = "updateRemainTime"
	MSG_PREVENT_USERTOUCH       = "preventUsertouch"
	MSG_FINISH_GAME             = "finishGame"
	MSG_START_RESULT            = "startResult"

	// Result messages
	MSG_INIT_RESULT         = "initResult"
	MSG_NEXT_RANKING_TYPE   = "nextRankingType"
	MSG_CHANGE_SCROLL_SPEED = "changeScrollSpeed"

	// Result log
	RESULT_LOG_TYPE = "multi:result"
)
