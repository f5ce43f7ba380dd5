package stubserver

import (
	"fmt"
	"math"
	"net/http"
	"sort"
)

// difficultyModifier maps a meal difficulty to its battle score penalty.
var difficultyModifier = map[string]float64{
	"HIGH": 1,
	"MED":  2,
	"LOW":  3,
}

// battleScore computes a combatant's score: price weighted by cuisine
// length, minus the difficulty penalty.
func battleScore(m *Meal) float64 {
	return m.Price*float64(len(m.Cuisine)) - difficultyModifier[m.Difficulty]
}

func (s *Server) handlePrepCombatant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Meal string `json:"meal"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Meal == "" {
		writeError(w, http.StatusBadRequest, "meal is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.combatants) >= 2 {
		writeError(w, http.StatusBadRequest,
			"Combatant list is full, cannot add more combatants.")
		return
	}

	meal, err := s.lookupMealByName(req.Meal)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.combatants = append(s.combatants, meal)

	writeSuccess(w, map[string]any{"combatants": s.combatantNames()})
}

func (s *Server) handleGetCombatants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeSuccess(w, map[string]any{"combatants": s.combatants})
}

func (s *Server) handleClearCombatants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.combatants = nil

	writeSuccess(w, nil)
}

// handleBattle settles a fight between the two prepped combatants.
func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	winner, err := s.fight()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, map[string]any{"winner": winner.Meal})
}

// handleInitBattle readies a battle without client-constructed combatants:
// the roster is reset and re-seeded from the two strongest live catalog
// meals, or from two built-in house dishes when the catalog is too small.
// The battle backend is unobservable from the original scripts; what they
// assert is that init succeeds and a subsequent start succeeds.
func (s *Server) handleInitBattle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make([]*Meal, 0, len(s.meals))
	for _, meal := range s.meals {
		if !meal.Deleted {
			live = append(live, meal)
		}
	}

	if len(live) >= 2 {
		sort.Slice(live, func(i, j int) bool {
			if si, sj := battleScore(live[i]), battleScore(live[j]); si != sj {
				return si > sj
			}
			return live[i].ID < live[j].ID
		})
		s.combatants = []*Meal{live[0], live[1]}
	} else {
		s.combatants = houseCombatants()
	}

	writeSuccess(w, map[string]any{"combatants": s.combatantNames()})
}

// handleStartBattle runs the fight set up by init-battle.
func (s *Server) handleStartBattle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	winner, err := s.fight()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, map[string]any{"winner": winner.Meal})
}

// fight settles a battle between the two prepped combatants. The winner
// keeps its roster slot; the loser is removed. Catalog meals get their
// battle stats updated; transient house dishes do not. Callers hold s.mu.
func (s *Server) fight() (*Meal, error) {
	if len(s.combatants) < 2 {
		return nil, fmt.Errorf("Two combatants must be prepped for a battle.")
	}

	first, second := s.combatants[0], s.combatants[1]

	// Normalized score delta against a random decimal decides the fight.
	delta := math.Abs(battleScore(first)-battleScore(second)) / 100

	var winner, loser *Meal
	if delta > s.random() {
		winner, loser = first, second
	} else {
		winner, loser = second, first
	}

	s.updateStats(winner, true)
	s.updateStats(loser, false)
	s.combatants = []*Meal{winner}

	return winner, nil
}

// updateStats records a battle outcome for catalog meals. Transient
// combatants (negative IDs) carry no persistent stats.
func (s *Server) updateStats(m *Meal, won bool) {
	if _, ok := s.meals[m.ID]; !ok {
		return
	}
	m.Battles++
	if won {
		m.Wins++
	}
}

func (s *Server) combatantNames() []string {
	names := make([]string, len(s.combatants))
	for i, c := range s.combatants {
		names[i] = c.Meal
	}
	return names
}

// houseCombatants returns the fallback pairing used when the catalog
// cannot field two meals.
func houseCombatants() []*Meal {
	return []*Meal{
		{ID: -1, Meal: "House Ramen", Cuisine: "Japanese", Price: 11.0, Difficulty: "MED"},
		{ID: -2, Meal: "House Tacos", Cuisine: "Mexican", Price: 9.5, Difficulty: "LOW"},
	}
}

// LeaderboardEntry is one row of the leaderboard response.
type LeaderboardEntry struct {
	ID         int     `json:"id"`
	Meal       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Battles    int     `json:"battles"`
	Wins       int     `json:"wins"`
	WinPct     float64 `json:"win_pct"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = "wins"
	}
	if sortBy != "wins" && sortBy != "win_pct" {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid sort_by parameter: %s", sortBy))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []LeaderboardEntry{}
	for _, meal := range s.meals {
		if meal.Deleted || meal.Battles == 0 {
			continue
		}
		winPct := float64(meal.Wins) / float64(meal.Battles) * 100
		entries = append(entries, LeaderboardEntry{
			ID:         meal.ID,
			Meal:       meal.Meal,
			Cuisine:    meal.Cuisine,
			Price:      meal.Price,
			Difficulty: meal.Difficulty,
			Battles:    meal.Battles,
			Wins:       meal.Wins,
			WinPct:     math.Round(winPct*10) / 10,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if sortBy == "win_pct" {
			if entries[i].WinPct != entries[j].WinPct {
				return entries[i].WinPct > entries[j].WinPct
			}
		} else if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].ID < entries[j].ID
	})

	writeSuccess(w, map[string]any{"leaderboard": entries})
}
