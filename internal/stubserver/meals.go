package stubserver

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
)

// Meal is a catalog entry. Deletion is soft: deleted meals stay in the
// map but are invisible to reads and cannot fight or be deleted again.
type Meal struct {
	ID         int     `json:"id"`
	Meal       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Deleted    bool    `json:"-"`
	Battles    int     `json:"battles"`
	Wins       int     `json:"wins"`
}

var validDifficulties = map[string]bool{"LOW": true, "MED": true, "HIGH": true}

func (s *Server) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Meal       string  `json:"meal"`
		Cuisine    string  `json:"cuisine"`
		Price      float64 `json:"price"`
		Difficulty string  `json:"difficulty"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Meal == "" || req.Cuisine == "" {
		writeError(w, http.StatusBadRequest, "meal and cuisine are required")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid price: %v. Price must be a positive number.", req.Price))
		return
	}
	if !validDifficulties[req.Difficulty] {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid difficulty level: %s. Must be 'LOW', 'MED', or 'HIGH'.", req.Difficulty))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, meal := range s.meals {
		if meal.Meal == req.Meal && !meal.Deleted {
			writeError(w, http.StatusConflict,
				fmt.Sprintf("Meal with name '%s' already exists", req.Meal))
			return
		}
	}

	meal := &Meal{
		ID:         s.nextMealID,
		Meal:       req.Meal,
		Cuisine:    req.Cuisine,
		Price:      req.Price,
		Difficulty: req.Difficulty,
	}
	s.meals[meal.ID] = meal
	s.nextMealID++

	writeSuccess(w, map[string]any{"meal": meal})
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "meal id must be an integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meal, ok := s.meals[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with ID %d not found", id))
		return
	}
	if meal.Deleted {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Meal with ID %d has been deleted", id))
		return
	}
	meal.Deleted = true

	writeSuccess(w, nil)
}

func (s *Server) handleClearMeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Matches the reference behavior of recreating the table: IDs restart.
	s.meals = make(map[int]*Meal)
	s.nextMealID = 1
	s.combatants = nil

	writeSuccess(w, nil)
}

func (s *Server) handleGetAllMeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meals := make([]*Meal, 0, len(s.meals))
	for _, meal := range s.meals {
		if !meal.Deleted {
			meals = append(meals, meal)
		}
	}
	sort.Slice(meals, func(i, j int) bool { return meals[i].ID < meals[j].ID })

	writeSuccess(w, map[string]any{"meals": meals})
}

func (s *Server) handleGetMealByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "meal id must be an integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meal, err := s.lookupMealByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeSuccess(w, map[string]any{"meal": meal})
}

func (s *Server) handleGetMealByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mu.Lock()
	defer s.mu.Unlock()

	meal, err := s.lookupMealByName(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeSuccess(w, map[string]any{"meal": meal})
}

// lookupMealByID returns a live (non-deleted) meal. Callers hold s.mu.
func (s *Server) lookupMealByID(id int) (*Meal, error) {
	meal, ok := s.meals[id]
	if !ok {
		return nil, fmt.Errorf("Meal with ID %d not found", id)
	}
	if meal.Deleted {
		return nil, fmt.Errorf("Meal with ID %d has been deleted", id)
	}
	return meal, nil
}

// lookupMealByName returns a live meal by name. Callers hold s.mu.
func (s *Server) lookupMealByName(name string) (*Meal, error) {
	for _, meal := range s.meals {
		if meal.Meal == name && !meal.Deleted {
			return meal, nil
		}
	}
	return nil, fmt.Errorf("Meal with name %s not found", name)
}
