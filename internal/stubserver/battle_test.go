package stubserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattleScore(t *testing.T) {
	pasta := &Meal{Meal: "Pasta", Cuisine: "Italian", Price: 10.0, Difficulty: "MED"}
	sushi := &Meal{Meal: "Sushi", Cuisine: "Japanese", Price: 12.5, Difficulty: "LOW"}
	burger := &Meal{Meal: "Burger", Cuisine: "American", Price: 8.0, Difficulty: "HIGH"}

	assert.Equal(t, 68.0, battleScore(pasta))  // 10.0*7 - 2
	assert.Equal(t, 97.0, battleScore(sushi))  // 12.5*8 - 3
	assert.Equal(t, 63.0, battleScore(burger)) // 8.0*8 - 1
}

func prepPair(t *testing.T, c *testClient) {
	t.Helper()
	createMeal(t, c, "Pasta", "Italian", 10.0, "MED")
	createMeal(t, c, "Sushi", "Japanese", 12.5, "LOW")
	for _, name := range []string{"Pasta", "Sushi"} {
		status, _, _ := c.do("POST", "/prep-combatant", map[string]any{"meal": name})
		require.Equal(t, http.StatusOK, status)
	}
}

func TestPrepCombatant(t *testing.T) {
	_, c := newTestClient(t)
	createMeal(t, c, "Pasta", "Italian", 10.0, "MED")

	status, doc, _ := c.do("POST", "/prep-combatant", map[string]any{"meal": "Pasta"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Pasta"}, doc["combatants"])

	status, doc, _ = c.do("POST", "/prep-combatant", map[string]any{"meal": "Ramen"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Meal with name Ramen not found", doc["message"])
}

func TestPrepCombatant_RosterFull(t *testing.T) {
	_, c := newTestClient(t)
	prepPair(t, c)

	// The roster check comes before the meal lookup, so even an unknown
	// name gets the full-roster answer.
	status, doc, _ := c.do("POST", "/prep-combatant", map[string]any{"meal": "Unknown"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Combatant list is full, cannot add more combatants.", doc["message"])
}

func TestBattle_RequiresTwoCombatants(t *testing.T) {
	_, c := newTestClient(t)
	createMeal(t, c, "Pasta", "Italian", 10.0, "MED")

	status, doc, _ := c.do("GET", "/battle", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Two combatants must be prepped for a battle.", doc["message"])

	status, _, _ = c.do("POST", "/prep-combatant", map[string]any{"meal": "Pasta"})
	require.Equal(t, http.StatusOK, status)

	status, doc, _ = c.do("GET", "/battle", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Two combatants must be prepped for a battle.", doc["message"])
}

func TestBattle_FirstWinsWhenDeltaBeatsRandom(t *testing.T) {
	// Pasta 68 vs Sushi 97: delta 0.29 beats 0.1, first combatant wins.
	_, c := newTestClient(t, WithRandom(func() float64 { return 0.1 }))
	prepPair(t, c)

	status, doc, _ := c.do("GET", "/battle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Pasta", doc["winner"])

	// The winner keeps its roster slot, the loser is removed.
	status, doc, _ = c.do("GET", "/get-combatants", nil)
	require.Equal(t, http.StatusOK, status)
	combatants := doc["combatants"].([]any)
	require.Len(t, combatants, 1)
	assert.Equal(t, "Pasta", combatants[0].(map[string]any)["meal"])
}

func TestBattle_SecondWinsWhenRandomBeatsDelta(t *testing.T) {
	_, c := newTestClient(t, WithRandom(func() float64 { return 0.9 }))
	prepPair(t, c)

	status, doc, _ := c.do("GET", "/battle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sushi", doc["winner"])
}

func TestBattle_UpdatesStats(t *testing.T) {
	_, c := newTestClient(t, WithRandom(func() float64 { return 0.1 }))
	prepPair(t, c)

	status, _, _ := c.do("GET", "/battle", nil)
	require.Equal(t, http.StatusOK, status)

	status, doc, _ := c.do("GET", "/get-meal-by-name/Pasta", nil)
	require.Equal(t, http.StatusOK, status)
	winner := doc["meal"].(map[string]any)
	assert.Equal(t, float64(1), winner["battles"])
	assert.Equal(t, float64(1), winner["wins"])

	status, doc, _ = c.do("GET", "/get-meal-by-name/Sushi", nil)
	require.Equal(t, http.StatusOK, status)
	loser := doc["meal"].(map[string]any)
	assert.Equal(t, float64(1), loser["battles"])
	assert.Equal(t, float64(0), loser["wins"])
}

func TestInitBattle_PicksStrongestPair(t *testing.T) {
	_, c := newTestClient(t)
	createMeal(t, c, "Pasta", "Italian", 10.0, "MED")   // 68
	createMeal(t, c, "Sushi", "Japanese", 12.5, "LOW")  // 97
	createMeal(t, c, "Burger", "American", 8.0, "HIGH") // 63

	status, doc, _ := c.do("POST", "/init-battle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Sushi", "Pasta"}, doc["combatants"])
}

func TestInitBattle_HouseFallback(t *testing.T) {
	s, c := newTestClient(t, WithRandom(func() float64 { return 0.5 }))

	status, doc, _ := c.do("POST", "/init-battle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"House Ramen", "House Tacos"}, doc["combatants"])

	status, doc, _ = c.do("POST", "/start-battle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, []any{"House Ramen", "House Tacos"}, doc["winner"])

	// House dishes are transient; no catalog stats appear.
	s.mu.Lock()
	assert.Empty(t, s.meals)
	s.mu.Unlock()
}

func TestClearCombatants(t *testing.T) {
	_, c := newTestClient(t)
	prepPair(t, c)

	status, _, _ := c.do("POST", "/clear-combatants", nil)
	require.Equal(t, http.StatusOK, status)

	status, doc, _ := c.do("GET", "/get-combatants", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, doc["combatants"])
}

func TestLeaderboard(t *testing.T) {
	_, c := newTestClient(t, WithRandom(func() float64 { return 0.01 }))
	createMeal(t, c, "Pasta", "Italian", 10.0, "MED")
	createMeal(t, c, "Sushi", "Japanese", 12.5, "LOW")
	createMeal(t, c, "Burger", "American", 8.0, "HIGH")

	// Two fights, both won by the first-prepped combatant.
	for _, pair := range [][]string{{"Pasta", "Sushi"}, {"Pasta", "Burger"}} {
		status, _, _ := c.do("POST", "/clear-combatants", nil)
		require.Equal(t, http.StatusOK, status)
		for _, name := range pair {
			status, _, _ = c.do("POST", "/prep-combatant", map[string]any{"meal": name})
			require.Equal(t, http.StatusOK, status)
		}
		status, _, _ = c.do("GET", "/battle", nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, doc, _ := c.do("GET", "/leaderboard", nil)
	require.Equal(t, http.StatusOK, status)

	board := doc["leaderboard"].([]any)
	require.Len(t, board, 3)

	top := board[0].(map[string]any)
	assert.Equal(t, "Pasta", top["meal"])
	assert.Equal(t, float64(2), top["battles"])
	assert.Equal(t, float64(2), top["wins"])
	assert.Equal(t, float64(100), top["win_pct"])

	assert.Equal(t, float64(0), board[1].(map[string]any)["wins"])
	assert.Equal(t, float64(0), board[2].(map[string]any)["wins"])
}

func TestLeaderboard_WinPctSortAndExclusions(t *testing.T) {
	_, c := newTestClient(t, WithRandom(func() float64 { return 0.1 }))
	createMeal(t, c, "Pasta", "Italian", 10.0, "MED")
	createMeal(t, c, "Sushi", "Japanese", 12.5, "LOW")
	createMeal(t, c, "Quiet", "French", 5.0, "LOW") // never fights

	prepFight := func() {
		status, _, _ := c.do("POST", "/clear-combatants", nil)
		require.Equal(t, http.StatusOK, status)
		for _, name := range []string{"Pasta", "Sushi"} {
			status, _, _ = c.do("POST", "/prep-combatant", map[string]any{"meal": name})
			require.Equal(t, http.StatusOK, status)
		}
		status, _, _ = c.do("GET", "/battle", nil)
		require.Equal(t, http.StatusOK, status)
	}
	prepFight()

	status, doc, _ := c.do("GET", "/leaderboard?sort=win_pct", nil)
	require.Equal(t, http.StatusOK, status)

	board := doc["leaderboard"].([]any)
	require.Len(t, board, 2, "meals with zero battles stay off the board")
	assert.Equal(t, "Pasta", board[0].(map[string]any)["meal"])
	assert.Equal(t, float64(100), board[0].(map[string]any)["win_pct"])
	assert.Equal(t, float64(0), board[1].(map[string]any)["win_pct"])

	status, doc, _ = c.do("GET", "/leaderboard?sort=chaos", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid sort_by parameter: chaos", doc["message"])
}
