package stubserver

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
)

// Item is a kitchen inventory entry.
type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order references an inventory item. Creating an order consumes stock.
type Order struct {
	ID       int     `json:"id"`
	ItemID   int     `json:"item_id"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "name and category are required")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid price: %v. Price must be a positive number.", req.Price))
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid quantity: %d. Quantity must not be negative.", req.Quantity))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Name == req.Name {
			writeError(w, http.StatusConflict,
				fmt.Sprintf("Item with name '%s' already exists", req.Name))
			return
		}
	}

	item := &Item{
		ID:       s.nextItemID,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	s.items[item.ID] = item
	s.nextItemID++

	writeSuccess(w, map[string]any{"item": item})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "item id must be an integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found", id))
		return
	}
	delete(s.items, id)

	writeSuccess(w, nil)
}

func (s *Server) handleGetAllItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	writeSuccess(w, map[string]any{"items": items})
}

func (s *Server) handleGetItemByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "item id must be an integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found", id))
		return
	}

	writeSuccess(w, map[string]any{"item": item})
}

func (s *Server) handleGetItemByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Name == name {
			writeSuccess(w, map[string]any{"item": item})
			return
		}
	}

	writeError(w, http.StatusNotFound, fmt.Sprintf("Item with name %s not found", name))
}

func (s *Server) handleGetRandomItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		writeError(w, http.StatusNotFound, "inventory is empty")
		return
	}

	// Deterministic iteration so the random index is meaningful.
	ids := make([]int, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	pick := ids[int(s.random()*float64(len(ids)))%len(ids)]

	writeSuccess(w, map[string]any{"item": s.items[pick]})
}

func (s *Server) handleUpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "item id must be an integer")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid quantity: %d. Quantity must not be negative.", req.Quantity))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found", id))
		return
	}
	item.Quantity = req.Quantity

	writeSuccess(w, map[string]any{"item": item})
}

func (s *Server) handleClearInventory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int]*Item)
	s.orders = make(map[int]*Order)
	s.nextItemID = 1
	s.nextOrderID = 1

	writeSuccess(w, nil)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID   int `json:"item_id"`
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid quantity: %d. Quantity must be a positive number.", req.Quantity))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[req.ItemID]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found", req.ItemID))
		return
	}
	if item.Quantity < req.Quantity {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Insufficient stock for item %d: have %d, want %d",
				item.ID, item.Quantity, req.Quantity))
		return
	}
	item.Quantity -= req.Quantity

	order := &Order{
		ID:       s.nextOrderID,
		ItemID:   item.ID,
		Quantity: req.Quantity,
		Total:    item.Price * float64(req.Quantity),
	}
	s.orders[order.ID] = order
	s.nextOrderID++

	writeSuccess(w, map[string]any{"order": order})
}

func (s *Server) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "order id must be an integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Order with ID %d not found", id))
		return
	}

	writeSuccess(w, map[string]any{"order": order})
}
