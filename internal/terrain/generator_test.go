package terrain

import (
	"errors"
	"testing"

	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allStoneConfig – конфигурация, где весь мир состоит из камня и считается глубоким
func allStoneConfig(rules ...FeatureRule) *Config {
	cfg := DefaultConfig()
	cfg.BaseLayers = []BaseLayer{{Type: block.StoneBlockID, Threshold: 1.0}}
	cfg.FeatureRules = rules
	cfg.Noise.DeepThreshold = 0
	return cfg
}

func alwaysRule(id block.BlockID) FeatureRule {
	return FeatureRule{Type: id, BaseTypes: []block.BlockID{block.StoneBlockID}, SpawnChance: 1, NoiseThreshold: -1}
}

func TestGenerateBlockTypeDeterministic(t *testing.T) {
	g1 := MustNewGenerator(42, nil)
	g2 := MustNewGenerator(42, nil)

	for x := -64; x < 64; x += 3 {
		for y := -64; y < 64; y += 5 {
			first := g1.GenerateBlockType(x, y)
			assert.Equal(t, first, g1.GenerateBlockType(x, y), "повторный запрос (%d,%d)", x, y)
			assert.Equal(t, first, g2.GenerateBlockType(x, y), "второй генератор (%d,%d)", x, y)
		}
	}
}

func TestClassifierConsistency(t *testing.T) {
	g := MustNewGenerator(1234, nil)
	c := g.Classifier()

	for x := -200; x < 200; x += 13 {
		for y := -200; y < 200; y += 17 {
			v := c.Value(x, y)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)

			deep := c.IsDeepUnderground(x, y)
			assert.Equal(t, v >= 0.84, deep)
			if deep {
				assert.Equal(t, block.StoneBlockID, c.ClassifyBase(x, y), "глубокая клетка всегда каменная")
			}

			base, deep2 := c.Sample(x, y)
			assert.Equal(t, c.ClassifyBase(x, y), base)
			assert.Equal(t, deep, deep2)
		}
	}
}

func TestFeaturesRespectEligibleBase(t *testing.T) {
	g := MustNewGenerator(42, nil)
	c := g.Classifier()

	for x := -300; x < 300; x += 7 {
		for y := -300; y < 300; y += 7 {
			got := g.GenerateBlockType(x, y)
			base, deep := c.Sample(x, y)

			switch got {
			case block.WoodBlockID:
				assert.Contains(t, []block.BlockID{block.GrassBlockID, block.DirtBlockID}, base)
			case block.LavaBlockID, block.DiamondBlockID:
				assert.Equal(t, block.StoneBlockID, base)
				assert.True(t, deep)
			case block.CoalBlockID:
				assert.Equal(t, block.StoneBlockID, base)
			default:
				assert.Equal(t, base, got, "без особенности возвращается базовый тип")
			}
		}
	}
}

func TestRuleOrderFirstMatchWins(t *testing.T) {
	coalOnly := MustNewGenerator(7, allStoneConfig(alwaysRule(block.CoalBlockID)))
	diamondFirst := MustNewGenerator(7, allStoneConfig(alwaysRule(block.DiamondBlockID), alwaysRule(block.CoalBlockID)))

	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			assert.Equal(t, block.CoalBlockID, coalOnly.GenerateBlockType(x, y))
			assert.Equal(t, block.DiamondBlockID, diamondFirst.GenerateBlockType(x, y))
		}
	}
}

func TestZeroSpawnChanceNeverFires(t *testing.T) {
	rule := alwaysRule(block.CoalBlockID)
	rule.SpawnChance = 0
	g := MustNewGenerator(7, allStoneConfig(rule))

	for x := 0; x < 32; x++ {
		assert.Equal(t, block.StoneBlockID, g.GenerateBlockType(x, -x))
	}
}

func TestDeepOnlyRule(t *testing.T) {
	rule := alwaysRule(block.DiamondBlockID)
	rule.RequiresDeep = true

	cfg := allStoneConfig(rule)
	cfg.Noise.DeepThreshold = 1.0
	cfg.Noise.StretchMin = 0.9 // глубина требует нормализованного шума >= 0.95, что недостижимо
	cfg.Noise.StretchMax = 0.95
	g := MustNewGenerator(3, cfg)

	for x := 0; x < 32; x++ {
		assert.Equal(t, block.StoneBlockID, g.GenerateBlockType(x, x))
	}
}

func TestLavaPoolPredicate(t *testing.T) {
	lava := alwaysRule(block.LavaBlockID)
	lava.RequiresDeep = true
	lava.Pool = true

	pools := allStoneConfig(lava)
	pools.Noise.LavaPoolThreshold = -1
	noPools := allStoneConfig(lava, alwaysRule(block.CoalBlockID))
	noPools.Noise.LavaPoolThreshold = 1

	gPools := MustNewGenerator(11, pools)
	gNoPools := MustNewGenerator(11, noPools)

	lavaCount := 0
	for x := 0; x < 40; x++ {
		for y := 0; y < 40; y++ {
			if gPools.GenerateBlockType(x, y) == block.LavaBlockID {
				lavaCount++
			}
			// Отказ предиката озера передаёт ход следующему правилу
			assert.Equal(t, block.CoalBlockID, gNoPools.GenerateBlockType(x, y))
		}
	}
	assert.Greater(t, lavaCount, 1500, "почти все клетки должны стать лавой")
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := MustNewGenerator(1, nil)
	b := MustNewGenerator(2, nil)

	differs := 0
	for x := 0; x < 400; x += 4 {
		for y := 0; y < 400; y += 4 {
			if a.GenerateBlockType(x, y) != b.GenerateBlockType(x, y) {
				differs++
			}
		}
	}
	assert.Greater(t, differs, 0)
}

func TestNewGeneratorRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseLayers[1].Threshold = 0.1 // меньше порога воды

	g, err := NewGenerator(42, cfg)
	assert.Nil(t, g)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Issues)
	assert.Panics(t, func() { MustNewGenerator(42, cfg) })
}

func TestGeneratorOwnsConfigCopy(t *testing.T) {
	cfg := DefaultConfig()
	g := MustNewGenerator(42, cfg)
	before := g.GenerateBlockType(10, 10)

	cfg.BaseLayers[0].Threshold = 0.99
	cfg.FeatureRules = nil

	assert.Equal(t, before, g.GenerateBlockType(10, 10))
	assert.Len(t, g.Config().FeatureRules, 4)
}

func TestCellRandom(t *testing.T) {
	a := newCellRandom(5, -3, 42)
	b := newCellRandom(5, -3, 42)
	for i := 0; i < 10; i++ {
		va := a.Float64()
		assert.Equal(t, va, b.Float64())
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 1.0)
	}

	c := newCellRandom(6, -3, 42)
	d := newCellRandom(5, -3, 42)
	assert.NotEqual(t, c.Float64(), d.Float64())
}
