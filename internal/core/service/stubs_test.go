package service

import (
	"context"
	"sync"
	"time"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory rental repository with the same conditional update semantics as
// the Mongo one.
// ---------------------------------------------------------------------------

type memRentalRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.RentalRecord
	createErr error
	transErr  error
}

func newMemRentalRepo() *memRentalRepo {
	return &memRentalRepo{byID: make(map[string]*domain.RentalRecord)}
}

func (r *memRentalRepo) Create(_ context.Context, rec *domain.RentalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Key() == rec.Key() {
			return domain.ErrDuplicateRental
		}
		if existing.Live && existing.Pair() == rec.Pair() {
			return domain.ErrActiveBookingExists
		}
	}
	clone := *rec
	r.byID[rec.ID] = &clone
	return nil
}

func (r *memRentalRepo) Transition(_ context.Context, m domain.RentalMatch, u domain.RentalUpdate) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transErr != nil {
		return 0, r.transErr
	}
	for _, rec := range r.byID {
		if rec.Key() != m.Key || rec.Status != m.Expected {
			continue
		}
		rec.Status = u.Status
		rec.Live = u.Status.IsLive()
		if u.ActualStart != nil {
			t := *u.ActualStart
			rec.ActualStart = &t
		}
		if u.ActualEnd != nil {
			t := *u.ActualEnd
			rec.ActualEnd = &t
		}
		if u.ActualHours != nil {
			h := *u.ActualHours
			rec.ActualHours = &h
		}
		return 1, nil
	}
	return 0, nil
}

func (r *memRentalRepo) FindByID(_ context.Context, id string) (*domain.RentalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRentalNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *memRentalRepo) FindLiveByPair(_ context.Context, pair domain.PairKey) (*domain.RentalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byID {
		if rec.Live && rec.Pair() == pair {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, domain.ErrRentalNotFound
}

func (r *memRentalRepo) FindAccepted(_ context.Context) ([]*domain.RentalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RentalRecord
	for _, rec := range r.byID {
		if rec.Status == domain.StatusAccepted {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

// put stores rec as is, bypassing the live pair check.
func (r *memRentalRepo) put(rec domain.RentalRecord) {
	r.mu.Lock()
	r.byID[rec.ID] = &rec
	r.mu.Unlock()
}

func (r *memRentalRepo) only() *domain.RentalRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byID {
		clone := *rec
		return &clone
	}
	return nil
}

// ---------------------------------------------------------------------------
// Profiles, members and notifications
// ---------------------------------------------------------------------------

type memProfileRepo struct {
	mu        sync.Mutex
	profiles  map[domain.ProfileKind]map[string]*domain.Profile
	upsertErr error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: map[domain.ProfileKind]map[string]*domain.Profile{
		domain.KindProvider:  {},
		domain.KindRequester: {},
	}}
}

func (r *memProfileRepo) Upsert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	clone := *p
	r.profiles[p.Kind][p.UserID] = &clone
	return nil
}

func (r *memProfileRepo) TouchName(_ context.Context, kind domain.ProfileKind, id, name string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	p, ok := r.profiles[kind][id]
	if !ok {
		p = &domain.Profile{UserID: id, Kind: kind}
		r.profiles[kind][id] = p
	}
	p.DisplayName = name
	p.UpdatedAt = at
	return nil
}

func (r *memProfileRepo) FindByName(_ context.Context, kind domain.ProfileKind, name string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles[kind] {
		if sameName(p.DisplayName, name) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *memProfileRepo) FindByID(_ context.Context, kind domain.ProfileKind, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[kind][id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

type memDirectory struct {
	members []domain.Member
	err     error
}

func (d *memDirectory) Lookup(_ context.Context, _, id string) (*domain.Member, error) {
	if d.err != nil {
		return nil, d.err
	}
	for i := range d.members {
		if d.members[i].ID == id {
			m := d.members[i]
			return &m, nil
		}
	}
	return nil, domain.ErrIdentifierNotFound
}

func (d *memDirectory) List(_ context.Context, _ string) ([]domain.Member, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.members, nil
}

func (d *memDirectory) Replace(_ context.Context, _ string, members []domain.Member) error {
	d.members = members
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []domain.Notification
	frames []domain.CountdownFrame
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) Display(_ context.Context, f domain.CountdownFrame) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frames = append(n.frames, f)
	return n.err
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

func (n *recordingNotifier) count(kind domain.NotificationKind) int {
	c := 0
	for _, k := range n.kinds() {
		if k == kind {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) last() domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return domain.Notification{}
	}
	return n.sent[len(n.sent)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
