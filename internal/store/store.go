package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

const (
	orderPrefix   = "order/"
	ordinalPrefix = "ordinal/"

	nextOrderIDKey   = "meta/next_order_id"
	nextOrdinalIDKey = "meta/next_ordinal_id"
)

func orderKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", orderPrefix, id))
}

func ordinalKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", ordinalPrefix, id))
}

// Store persists orders and ordinals as JSON records in a DB.
type Store struct {
	db DB

	// mu serializes ID assignment and read-modify-write updates.
	mu sync.Mutex
}

// New creates a Store over the given database.
func New(db DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// nextID reads, increments and writes back the counter at key. The first
// id handed out is 1.
func (s *Store) nextID(key string) (uint64, error) {
	var next uint64 = 1
	raw, err := s.db.Get([]byte(key))
	if err == nil {
		if err := json.Unmarshal(raw, &next); err != nil {
			return 0, fmt.Errorf("decode counter %s: %w", key, err)
		}
	} else if err != ErrKeyNotFound {
		return 0, err
	}

	enc, err := json.Marshal(next + 1)
	if err != nil {
		return 0, fmt.Errorf("encode counter %s: %w", key, err)
	}
	if err := s.db.Put([]byte(key), enc); err != nil {
		return 0, err
	}
	return next, nil
}

// CreateOrder assigns the order an id and timestamps and persists it.
// The caller fills in the remaining fields; Status defaults to UNPAID.
func (s *Store) CreateOrder(order *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID(nextOrderIDKey)
	if err != nil {
		return fmt.Errorf("assign order id: %w", err)
	}
	order.ID = id
	if order.Status == "" {
		order.Status = StatusUnpaid
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	return s.putOrder(order)
}

func (s *Store) putOrder(order *Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %d: %w", order.ID, err)
	}
	return s.db.Put(orderKey(order.ID), raw)
}

// GetOrder returns the order with the given id.
func (s *Store) GetOrder(id uint64) (*Order, error) {
	raw, err := s.db.Get(orderKey(id))
	if err == ErrKeyNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode order %d: %w", id, err)
	}
	return &order, nil
}

// UpdateOrder applies fn to the stored order under the store lock and
// persists the result. fn returning an error aborts without writing.
func (s *Store) UpdateOrder(id uint64, fn func(*Order) error) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	order.UpdatedAt = time.Now().UTC()
	if err := s.putOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// AdvanceOrder moves the order to next, rejecting backward transitions.
func (s *Store) AdvanceOrder(id uint64, next Status) (*Order, error) {
	return s.UpdateOrder(id, func(o *Order) error {
		if !o.Status.CanAdvanceTo(next) {
			return fmt.Errorf("order %d: cannot advance %s to %s", id, o.Status, next)
		}
		o.Status = next
		return nil
	})
}

// Orders returns all orders matching the filter, in id order. A nil
// filter returns everything.
func (s *Store) Orders(filter func(*Order) bool) ([]*Order, error) {
	var orders []*Order
	err := s.db.ForEach([]byte(orderPrefix), func(key, value []byte) error {
		var order Order
		if err := json.Unmarshal(value, &order); err != nil {
			return fmt.Errorf("decode order at %s: %w", key, err)
		}
		if filter == nil || filter(&order) {
			orders = append(orders, &order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// OrdersByStatus returns all orders in any of the given states, in id
// order.
func (s *Store) OrdersByStatus(statuses ...Status) ([]*Order, error) {
	want := make(map[Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	return s.Orders(func(o *Order) bool { return want[o.Status] })
}

// OrdersByReceiver returns all orders with the given receive address.
func (s *Store) OrdersByReceiver(address string) ([]*Order, error) {
	return s.Orders(func(o *Order) bool { return o.ReceiveAddress == address })
}

// OrderByToken returns the order with the given webhook update token.
func (s *Store) OrderByToken(token string) (*Order, error) {
	orders, err := s.Orders(func(o *Order) bool { return o.UpdateToken == token })
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}

// CreateOrdinal assigns the ordinal an id and timestamps and persists it.
func (s *Store) CreateOrdinal(ordinal *Ordinal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID(nextOrdinalIDKey)
	if err != nil {
		return fmt.Errorf("assign ordinal id: %w", err)
	}
	ordinal.ID = id
	now := time.Now().UTC()
	ordinal.CreatedAt = now
	ordinal.UpdatedAt = now

	return s.putOrdinal(ordinal)
}

func (s *Store) putOrdinal(ordinal *Ordinal) error {
	raw, err := json.Marshal(ordinal)
	if err != nil {
		return fmt.Errorf("encode ordinal %d: %w", ordinal.ID, err)
	}
	return s.db.Put(ordinalKey(ordinal.ID), raw)
}

// GetOrdinal returns the ordinal with the given id.
func (s *Store) GetOrdinal(id uint64) (*Ordinal, error) {
	raw, err := s.db.Get(ordinalKey(id))
	if err == ErrKeyNotFound {
		return nil, ErrOrdinalNotFound
	}
	if err != nil {
		return nil, err
	}
	var ordinal Ordinal
	if err := json.Unmarshal(raw, &ordinal); err != nil {
		return nil, fmt.Errorf("decode ordinal %d: %w", id, err)
	}
	return &ordinal, nil
}

// UpdateOrdinal applies fn to the stored ordinal under the store lock and
// persists the result.
func (s *Store) UpdateOrdinal(id uint64, fn func(*Ordinal) error) (*Ordinal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordinal, err := s.GetOrdinal(id)
	if err != nil {
		return nil, err
	}
	if err := fn(ordinal); err != nil {
		return nil, err
	}
	ordinal.UpdatedAt = time.Now().UTC()
	if err := s.putOrdinal(ordinal); err != nil {
		return nil, err
	}
	return ordinal, nil
}

// OrdinalsByOrder returns all ordinals belonging to the given order, in
// id order.
func (s *Store) OrdinalsByOrder(orderID uint64) ([]*Ordinal, error) {
	var ordinals []*Ordinal
	err := s.db.ForEach([]byte(ordinalPrefix), func(key, value []byte) error {
		var ordinal Ordinal
		if err := json.Unmarshal(value, &ordinal); err != nil {
			return fmt.Errorf("decode ordinal at %s: %w", key, err)
		}
		if ordinal.OrderID == orderID {
			ordinals = append(ordinals, &ordinal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(ordinals, func(i, j int) bool { return ordinals[i].ID < ordinals[j].ID })
	return ordinals, nil
}

// OrdinalByStage returns the order's single ordinal for the given stage,
// or ErrOrdinalNotFound. The image stage always has at most one.
func (s *Store) OrdinalByStage(orderID uint64, stage OrdinalStage) (*Ordinal, error) {
	ordinals, err := s.OrdinalsByOrder(orderID)
	if err != nil {
		return nil, err
	}
	for _, o := range ordinals {
		if o.Stage == stage {
			return o, nil
		}
	}
	return nil, ErrOrdinalNotFound
}
