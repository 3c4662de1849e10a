package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/domain"
)

// OpenLootBox applies a pending box's resolved rewards to the player and
// marks it opened. Opening the same box twice fails without mutation.
func (e *Engine) OpenLootBox(ctx context.Context, id uuid.UUID) *OpenLootResult {
	e.mu.Lock()
	var box *domain.LootBox
	idx := -1
	for i, l := range e.state.PendingLoot {
		if l.ID == id {
			box = l
			idx = i
			break
		}
	}
	if box == nil {
		e.mu.Unlock()
		return &OpenLootResult{Success: false, Message: domain.ErrMsgLootNotFound}
	}
	if box.Opened {
		e.mu.Unlock()
		return &OpenLootResult{Success: false, Message: domain.ErrMsgLootAlreadyOpened}
	}

	box.Opened = true
	player := e.state.Player
	fx := &effects{}

	for _, item := range box.Items {
		switch item.Kind {
		case domain.RewardGold:
			player.Gold += item.Amount
		case domain.RewardBonusXP:
			e.awardXP(int64(item.Amount), fx)
		case domain.RewardStatBoost:
			if stat, ok := player.Stats[item.Stat]; ok {
				stat.Bonus += item.Amount
			}
		case domain.RewardTitle:
			if !player.HasTitle(item.Name) {
				player.UnlockedTitles = append(player.UnlockedTitles, item.Name)
			}
		case domain.RewardCollectible:
			// nothing to apply; the item itself is the reward
		}
	}

	e.state.PendingLoot = append(e.state.PendingLoot[:idx], e.state.PendingLoot[idx+1:]...)
	e.logActivity(domain.ActivityLootOpened, fmt.Sprintf("Opened a %s loot box", box.Rarity))

	result := &OpenLootResult{
		Success: true,
		Message: fmt.Sprintf("Opened %s loot box", box.Rarity),
		Rarity:  box.Rarity,
		Items:   append([]domain.RewardItem(nil), box.Items...),
	}
	e.markSave(fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	return result
}
