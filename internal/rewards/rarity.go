package rewards

// Rarity is the tier of a quiz award.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type tier struct {
	rarity      Rarity
	minAccuracy float64
	label       string
	icon        string
}

// tiers is ordered from the highest accuracy threshold down.
var tiers = []tier{
	{RarityLegendary, 0.90, "Legendary", "🏆"},
	{RarityEpic, 0.75, "Epic", "💎"},
	{RarityRare, 0.50, "Rare", "⚡"},
	{RarityCommon, 0, "Common", "✦"},
}

func (r Rarity) tier() (tier, bool) {
	for _, t := range tiers {
		if t.rarity == r {
			return t, true
		}
	}
	return tier{}, false
}

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	if t, ok := r.tier(); ok {
		return t.label
	}
	return string(r)
}

func (r Rarity) Icon() string {
	t, ok := r.tier()
	if !ok {
		t = tiers[len(tiers)-1]
	}
	return t.icon
}

// QuizRarity returns the rarity earned by a quiz accuracy in [0, 1].
func QuizRarity(accuracy float64) Rarity {
	for _, t := range tiers {
		if accuracy >= t.minAccuracy {
			return t.rarity
		}
	}
	return RarityCommon
}
