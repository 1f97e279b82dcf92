package models

import (
	"encoding/json"
	"time"
)

type BatchStatus string

const (
	BatchActive    BatchStatus = "active"
	BatchLocked    BatchStatus = "locked"
	BatchCompleted BatchStatus = "completed"
)

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

// UrgencyFor maps the wait time of the oldest non-completed order in a
// batch to an urgency level.
func UrgencyFor(maxElapsedMinutes int) Urgency {
	switch {
	case maxElapsedMinutes >= UrgencyCriticalMinutes:
		return UrgencyCritical
	case maxElapsedMinutes >= UrgencyWarningMinutes:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// OrderRef is the membership record a batch holds for an assigned order.
type OrderRef struct {
	OrderID        string    `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	CustomerName   string    `json:"customerName"`
	ElapsedMinutes int       `json:"elapsedMinutes"`
	ItemCount      int       `json:"itemCount"`
	Completed      bool      `json:"completed"`
	CompletedAt    time.Time `json:"completedAt,omitempty"`
	IsNew          bool      `json:"isNew"`
	AddedAt        time.Time `json:"addedAt,omitempty"`
}

// Batch is one prep wave of orders.
type Batch struct {
	ID        string      `json:"id"`
	Number    int         `json:"number"`
	Capacity  int         `json:"capacity"`
	Status    BatchStatus `json:"status"`
	Urgency   Urgency     `json:"urgency"`
	CreatedAt time.Time   `json:"createdAt"`
	Orders    *OrderSet   `json:"orders"`
	Items     []ItemGroup `json:"items"`
}

// ActiveSize counts the non-completed orders in the batch.
func (b *Batch) ActiveSize() int {
	n := 0
	for _, ref := range b.Orders.Refs() {
		if !ref.Completed {
			n++
		}
	}
	return n
}

// OrderSet is an insertion-ordered set of batch membership records.
// Iteration order is the order in which orders joined the batch, which
// makes rebuilt views and broadcast payloads deterministic.
type OrderSet struct {
	ids  []string
	refs map[string]*OrderRef
}

func NewOrderSet() *OrderSet {
	return &OrderSet{refs: make(map[string]*OrderRef)}
}

func (s *OrderSet) Len() int {
	return len(s.ids)
}

func (s *OrderSet) Has(orderID string) bool {
	_, ok := s.refs[orderID]
	return ok
}

func (s *OrderSet) Get(orderID string) (*OrderRef, bool) {
	ref, ok := s.refs[orderID]
	return ref, ok
}

// Put adds a membership record, or replaces it in place without moving
// its position when the order is already a member.
func (s *OrderSet) Put(ref *OrderRef) {
	if _, ok := s.refs[ref.OrderID]; !ok {
		s.ids = append(s.ids, ref.OrderID)
	}
	s.refs[ref.OrderID] = ref
}

func (s *OrderSet) Delete(orderID string) {
	if _, ok := s.refs[orderID]; !ok {
		return
	}
	delete(s.refs, orderID)
	for i, id := range s.ids {
		if id == orderID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

func (s *OrderSet) Clear() {
	s.ids = nil
	s.refs = make(map[string]*OrderRef)
}

// IDs returns member ids in insertion order.
func (s *OrderSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Refs returns membership records in insertion order.
func (s *OrderSet) Refs() []*OrderRef {
	out := make([]*OrderRef, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.refs[id])
	}
	return out
}

type orderSetPair struct {
	Key   string    `json:"key"`
	Value *OrderRef `json:"value"`
}

// MarshalJSON flattens the set to an array of key/value pairs so the
// payload survives a round trip with both membership and arrival order
// intact.
func (s *OrderSet) MarshalJSON() ([]byte, error) {
	pairs := make([]orderSetPair, 0, len(s.ids))
	for _, id := range s.ids {
		pairs = append(pairs, orderSetPair{Key: id, Value: s.refs[id]})
	}
	return json.Marshal(pairs)
}

func (s *OrderSet) UnmarshalJSON(data []byte) error {
	var pairs []orderSetPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	s.ids = nil
	s.refs = make(map[string]*OrderRef, len(pairs))
	for _, p := range pairs {
		s.Put(p.Value)
	}
	return nil
}

// StateSnapshot is the full consolidated state a leader broadcasts after
// every extraction pass. Followers replace their local view with it
// wholesale.
type StateSnapshot struct {
	ExtractedAt time.Time `json:"extractedAt"`
	Leader      string    `json:"leader,omitempty"`
	Orders      []Order   `json:"orders"`
	Batches     []*Batch  `json:"batches"`
}
