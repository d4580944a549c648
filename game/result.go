package game

import (
	"context"
	"log"
	"sort"
	"time"

	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/protocol"
)

// Result is the final standing shown on the result screen.
type Result struct {
	LengthRanking []models.RankedCount
	KillRanking   []models.RankedCount
	JewelOwnerID  string
	Log           models.ResultLog
}

func rankBy(gm *Manager, count func(p *Player) int) []models.RankedCount {
	var out []models.RankedCount
	gm.each(func(p *Player) {
		out = append(out, models.RankedCount{PlayerID: p.ID, Count: count(p)})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// resultRanking orders every participant by final length and by kills.
func (gm *Manager) resultRanking() protocol.InitResult {
	return protocol.InitResult{
		LengthRankingPlayerIDList: rankBy(gm, func(p *Player) int { return p.LengthCount }),
		KillRankingPlayerIDList:   rankBy(gm, func(p *Player) int { return p.KillCount }),
		JewelOwnerID:              gm.jewelOwner,
	}
}

func rankOf(list []models.RankedCount, id string) int {
	for i, r := range list {
		if r.PlayerID == id {
			return i + 1
		}
	}
	return 0
}

func (gm *Manager) buildResult(m protocol.InitResult) *Result {
	res := &Result{
		LengthRanking: m.LengthRankingPlayerIDList,
		KillRanking:   m.KillRankingPlayerIDList,
		JewelOwnerID:  m.JewelOwnerID,
		Log: models.ResultLog{
			Type:      constants.RESULT_LOG_TYPE,
			SessionID: gm.sessionID,
		},
	}
	for i, r := range m.LengthRankingPlayerIDList {
		p, ok := gm.players[r.PlayerID]
		if !ok {
			continue
		}
		res.Log.Data = append(res.Log.Data, models.ResultEntry{
			Rank:   i + 1,
			UserID: p.ID,
			Score:  r.Count,
			Params: models.ResultParams{
				UserID:      p.ID,
				UserName:    p.User.Name,
				IsPremium:   p.User.IsPremium,
				LengthCount: p.LengthCount,
				LengthRank:  i + 1,
				Words:       p.LastWords,
				KillCount:   p.KillCount,
				KillRank:    rankOf(m.KillRankingPlayerIDList, p.ID),
				HaveJewel:   p.ID == m.JewelOwnerID,
			},
		})
	}
	return res
}

// submitResult hands the result log to the sink. Failures are only logged.
func (gm *Manager) submitResult() {
	if gm.results == nil || gm.result == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gm.results.Submit(ctx, gm.result.Log); err != nil {
		log.Printf("Failed to submit result log for session %s: %v", gm.sessionID, err)
		return
	}
	log.Printf("Submitted result log for session %s (%d players)", gm.sessionID, len(gm.result.Log.Data))
}
