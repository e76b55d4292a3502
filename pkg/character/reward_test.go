package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, 0, xpForLevel(1))
	assert.Equal(t, 100, xpForLevel(2))
	assert.Equal(t, 300, xpForLevel(3))
	assert.Equal(t, 600, xpForLevel(4))
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 2, LevelForXP(299))
	assert.Equal(t, 3, LevelForXP(300))

	// the cap holds no matter how much xp piles up
	assert.Equal(t, maxLevel, LevelForXP(1<<30))
}
