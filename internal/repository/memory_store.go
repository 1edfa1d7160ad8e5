package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// MemoryStore keeps reservations and tables in process memory.  It is used
// when STORE_DRIVER=memory and by tests.  Transactions are serialised by the
// store mutex and operate on a copy of the state that replaces the original
// only on success.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

// NewMemoryStore returns an empty store.  now may be nil to use time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{state: newMemState(), now: now}
}

type memState struct {
	reservations      map[uint64]model.Reservation
	tables            map[uint64]model.Table
	nextReservationID uint64
	nextTableID       uint64
}

func newMemState() *memState {
	return &memState{
		reservations: make(map[uint64]model.Reservation),
		tables:       make(map[uint64]model.Table),
	}
}

func (st *memState) clone() *memState {
	c := &memState{
		reservations:      make(map[uint64]model.Reservation, len(st.reservations)),
		tables:            make(map[uint64]model.Table, len(st.tables)),
		nextReservationID: st.nextReservationID,
		nextTableID:       st.nextTableID,
	}
	for id, r := range st.reservations {
		c.reservations[id] = r
	}
	for id, t := range st.tables {
		c.tables[id] = copyTable(t)
	}
	return c
}

func copyTable(t model.Table) model.Table {
	if t.ReservationID != nil {
		id := *t.ReservationID
		t.ReservationID = &id
	}
	return t
}

func (s *MemoryStore) Reservations() ReservationStore { return &lockedReservations{s: s} }

func (s *MemoryStore) Tables() TableStore { return &lockedTables{s: s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

// WithinTx runs fn against a private copy of the state.
func (s *MemoryStore) WithinTx(_ context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&memTx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// memTx is the unlocked view handed to WithinTx callbacks.
type memTx struct {
	st  *memState
	now func() time.Time
}

func (t *memTx) Reservations() ReservationStore { return &memReservations{st: t.st, now: t.now} }

func (t *memTx) Tables() TableStore { return &memTables{st: t.st, now: t.now} }

func (t *memTx) Ping(context.Context) error { return nil }

func (t *memTx) WithinTx(_ context.Context, fn func(tx Store) error) error { return fn(t) }

// ---- reservations ----

type memReservations struct {
	st  *memState
	now func() time.Time
}

func (m *memReservations) Create(_ context.Context, r *model.Reservation) error {
	m.st.nextReservationID++
	now := m.now().UTC()
	r.ID = m.st.nextReservationID
	r.CreatedAt, r.UpdatedAt = now, now
	m.st.reservations[r.ID] = *r
	return nil
}

func (m *memReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := m.st.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &r, nil
}

func (m *memReservations) filter(keep func(model.Reservation) bool, byTimeOnly bool) []*model.Reservation {
	out := make([]*model.Reservation, 0)
	for _, r := range m.st.reservations {
		if keep(r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !byTimeOnly && a.ReservationDate != b.ReservationDate {
			return a.ReservationDate < b.ReservationDate
		}
		if a.ReservationTime != b.ReservationTime {
			return a.ReservationTime < b.ReservationTime
		}
		return a.ID < b.ID
	})
	return out
}

func (m *memReservations) List(context.Context) ([]*model.Reservation, error) {
	return m.filter(func(model.Reservation) bool { return true }, false), nil
}

func (m *memReservations) ListByDate(_ context.Context, date string) ([]*model.Reservation, error) {
	return m.filter(func(r model.Reservation) bool { return r.ReservationDate == date }, true), nil
}

func (m *memReservations) SearchByMobile(_ context.Context, fragment string) ([]*model.Reservation, error) {
	frag := strings.ToLower(fragment)
	return m.filter(func(r model.Reservation) bool {
		return strings.Contains(strings.ToLower(r.MobileNumber), frag)
	}, false), nil
}

func (m *memReservations) Update(_ context.Context, r *model.Reservation) error {
	cur, ok := m.st.reservations[r.ID]
	if !ok {
		return ErrReservationNotFound
	}
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = m.now().UTC()
	m.st.reservations[r.ID] = *r
	return nil
}

func (m *memReservations) UpdateStatus(_ context.Context, id uint64, status model.ReservationStatus) error {
	cur, ok := m.st.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	cur.Status = status
	cur.UpdatedAt = m.now().UTC()
	m.st.reservations[id] = cur
	return nil
}

// ---- tables ----

type memTables struct {
	st  *memState
	now func() time.Time
}

func (m *memTables) Create(_ context.Context, t *model.Table) error {
	m.st.nextTableID++
	now := m.now().UTC()
	t.ID = m.st.nextTableID
	t.ReservationID = nil
	t.CreatedAt, t.UpdatedAt = now, now
	m.st.tables[t.ID] = copyTable(*t)
	return nil
}

func (m *memTables) GetByID(_ context.Context, id uint64) (*model.Table, error) {
	t, ok := m.st.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	t = copyTable(t)
	return &t, nil
}

func (m *memTables) GetByReservationID(_ context.Context, reservationID uint64) (*model.Table, error) {
	for _, t := range m.st.tables {
		if t.ReservationID != nil && *t.ReservationID == reservationID {
			t = copyTable(t)
			return &t, nil
		}
	}
	return nil, ErrTableNotFound
}

func (m *memTables) List(context.Context) ([]*model.Table, error) {
	out := make([]*model.Table, 0, len(m.st.tables))
	for _, t := range m.st.tables {
		t = copyTable(t)
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memTables) SetReservation(_ context.Context, tableID uint64, reservationID *uint64) error {
	t, ok := m.st.tables[tableID]
	if !ok {
		return ErrTableNotFound
	}
	if reservationID != nil {
		for id, other := range m.st.tables {
			if id != tableID && other.ReservationID != nil && *other.ReservationID == *reservationID {
				return ErrConflict
			}
		}
		rid := *reservationID
		t.ReservationID = &rid
	} else {
		t.ReservationID = nil
	}
	t.UpdatedAt = m.now().UTC()
	m.st.tables[tableID] = t
	return nil
}

// ---- locking wrappers used outside transactions ----

type lockedReservations struct{ s *MemoryStore }

func (l *lockedReservations) view() *memReservations {
	return &memReservations{st: l.s.state, now: l.s.now}
}

func (l *lockedReservations) Create(ctx context.Context, r *model.Reservation) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().Create(ctx, r)
}

func (l *lockedReservations) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().GetByID(ctx, id)
}

func (l *lockedReservations) List(ctx context.Context) ([]*model.Reservation, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().List(ctx)
}

func (l *lockedReservations) ListByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().ListByDate(ctx, date)
}

func (l *lockedReservations) SearchByMobile(ctx context.Context, fragment string) ([]*model.Reservation, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().SearchByMobile(ctx, fragment)
}

func (l *lockedReservations) Update(ctx context.Context, r *model.Reservation) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().Update(ctx, r)
}

func (l *lockedReservations) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().UpdateStatus(ctx, id, status)
}

type lockedTables struct{ s *MemoryStore }

func (l *lockedTables) view() *memTables { return &memTables{st: l.s.state, now: l.s.now} }

func (l *lockedTables) Create(ctx context.Context, t *model.Table) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().Create(ctx, t)
}

func (l *lockedTables) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().GetByID(ctx, id)
}

func (l *lockedTables) GetByReservationID(ctx context.Context, reservationID uint64) (*model.Table, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().GetByReservationID(ctx, reservationID)
}

func (l *lockedTables) List(ctx context.Context) ([]*model.Table, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().List(ctx)
}

func (l *lockedTables) SetReservation(ctx context.Context, tableID uint64, reservationID *uint64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().SetReservation(ctx, tableID, reservationID)
}
