package state

import (
	"math/rand"

	"vampgotchi/pkg/models"
)

const (
	hungerMax = 1000
	bloodMax  = 100
)

// gotchiStats is the pet's game stat block. Callers hold the State mutex.
type gotchiStats struct {
	hunger      int
	blood       int
	level       int
	exp         int
	expToNext   int
	money       int
	playerLevel int
	activity    []string
}

func newGotchiStats() gotchiStats {
	return gotchiStats{
		hunger:      800,
		blood:       100,
		level:       5,
		exp:         150,
		expToNext:   200,
		money:       400,
		playerLevel: 25,
	}
}

func (g *gotchiStats) export(coffin models.CoffinStatus) models.GotchiStats {
	activity := make([]string, len(g.activity))
	copy(activity, g.activity)
	return models.GotchiStats{
		Hunger:      g.hunger,
		Blood:       g.blood,
		Level:       g.level,
		Exp:         g.exp,
		ExpToNext:   g.expToNext,
		Money:       g.money,
		PlayerLevel: g.playerLevel,
		Coffin:      coffin,
		Activity:    activity,
	}
}

func (g *gotchiStats) spendHunger(amount int) {
	g.hunger -= amount
	if g.hunger < 0 {
		g.hunger = 0
	}
}

func (g *gotchiStats) gainBlood(amount int) {
	g.blood += amount
	if g.blood > bloodMax {
		g.blood = bloodMax
	}
}

// rewardScan pays out for a scan that found count devices and handles
// level-ups. pushActivity appends to the activity log.
func (g *gotchiStats) rewardScan(count int, pushActivity func(string)) {
	g.exp += count * 5
	g.money += count * 2
	g.gainBlood(5)
	g.checkLevelUp(pushActivity)
}

// rewardAttack pays out for launching an attack.
func (g *gotchiStats) rewardAttack(pushActivity func(string)) {
	g.spendHunger(20)
	g.gainBlood(10)
	g.exp += 15
	g.money += 10
	g.checkLevelUp(pushActivity)
}

// drainWhileAttacking applies the per-refresh cost of an ongoing attack.
func (g *gotchiStats) drainWhileAttacking() {
	g.spendHunger(5)
	g.gainBlood(2)
}

func (g *gotchiStats) checkLevelUp(pushActivity func(string)) {
	if g.exp < g.expToNext {
		return
	}
	g.level++
	g.exp = 0
	g.expToNext = g.expToNext * 3 / 2
	pushActivity("> Level up!")
}

var flavorMessages = []string{
	"> Slept well in.",
	"> Learned new trick!",
	"> Feeling spooky!",
	"> Ready to hunt!",
	"> Resting in coffin.",
}

func randomFlavorMessage() string {
	return flavorMessages[rand.Intn(len(flavorMessages))]
}
