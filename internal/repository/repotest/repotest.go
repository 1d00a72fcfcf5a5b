// Package repotest provides in-memory repositories and a settable clock for
// tests of the layers above the Mongo repositories.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"streamgate/internal/model"
	"streamgate/internal/repository"
)

// Clock is a ratelimit.Clock that only moves when told to
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Codes is an in-memory AccessCodeRepo that counts writes
type Codes struct {
	mu     sync.Mutex
	byCode map[string]*model.AccessCode
	nextID int
	writes int
}

func NewCodes() *Codes {
	return &Codes{byCode: make(map[string]*model.AccessCode)}
}

// Add stores c as is, bypassing the duplicate check and write counter
func (f *Codes) Add(c model.AccessCode) *model.AccessCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = fmt.Sprintf("code%d", f.nextID)
	stored := c
	f.byCode[c.Code] = &stored
	return &c
}

func (f *Codes) Create(_ context.Context, c *model.AccessCode) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byCode[c.Code]; ok {
		return "", repository.ErrDuplicate
	}
	f.writes++
	f.nextID++
	c.ID = fmt.Sprintf("code%d", f.nextID)
	cp := *c
	f.byCode[c.Code] = &cp
	return c.ID, nil
}

func (f *Codes) GetByCode(_ context.Context, code string) (*model.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byCode[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *Codes) GetByID(_ context.Context, id string) (*model.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byCode {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *Codes) List(_ context.Context) ([]*model.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.AccessCode, 0, len(f.byCode))
	for _, c := range f.byCode {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Codes) RotateMarker(_ context.Context, code, marker string, now time.Time) (*model.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byCode[code]
	if !ok || !c.IsActive || now.After(c.ExpiryDate) {
		return nil, nil
	}
	prev := *c
	f.writes++
	c.SessionMarker = marker
	c.SessionIssuedAt = &now
	c.SessionVersion++
	return &prev, nil
}

func (f *Codes) Deactivate(_ context.Context, id string) (*model.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byCode {
		if c.ID == id {
			f.writes++
			c.IsActive = false
			c.SessionVersion++
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *Codes) Delete(_ context.Context, id string) (*model.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, c := range f.byCode {
		if c.ID == id {
			f.writes++
			delete(f.byCode, code)
			return c, nil
		}
	}
	return nil, nil
}

func (f *Codes) Count(_ context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active int64
	for _, c := range f.byCode {
		if c.IsActive {
			active++
		}
	}
	return int64(len(f.byCode)), active, nil
}

func (f *Codes) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// memDocs is a tiny generic store for the catalog fakes
type memDocs[T any] struct {
	mu    sync.Mutex
	items map[string]*T
	order []string
	next  int
}

func newMemDocs[T any]() *memDocs[T] {
	return &memDocs[T]{items: make(map[string]*T)}
}

func (m *memDocs[T]) create(setID func(string), doc *T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := fmt.Sprintf("%024x", m.next)
	setID(id)
	cp := *doc
	m.items[id] = &cp
	m.order = append(m.order, id)
	return id
}

func (m *memDocs[T]) get(id string) *T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.items[id]; ok {
		cp := *d
		return &cp
	}
	return nil
}

func (m *memDocs[T]) all(keep func(*T) bool) []*T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*T, 0, len(m.items))
	for _, id := range m.order {
		if d, ok := m.items[id]; ok && (keep == nil || keep(d)) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out
}

func (m *memDocs[T]) replace(id string, doc *T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false
	}
	cp := *doc
	m.items[id] = &cp
	return true
}

func (m *memDocs[T]) remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false
	}
	delete(m.items, id)
	return true
}

type Movies struct{ *memDocs[model.Movie] }

func (f Movies) Create(_ context.Context, m *model.Movie) (string, error) {
	return f.create(func(id string) { m.ID = id }, m), nil
}
func (f Movies) GetByID(_ context.Context, id string) (*model.Movie, error) {
	return f.get(id), nil
}
func (f Movies) List(_ context.Context) ([]*model.Movie, error) { return f.all(nil), nil }
func (f Movies) Update(_ context.Context, m *model.Movie) (bool, error) {
	return f.replace(m.ID, m), nil
}
func (f Movies) Delete(_ context.Context, id string) (bool, error) { return f.remove(id), nil }
func (f Movies) Count(_ context.Context) (int64, error)           { return int64(len(f.all(nil))), nil }

type Shows struct{ *memDocs[model.Show] }

func ofKind(kind model.ShowKind) func(*model.Show) bool {
	return func(s *model.Show) bool { return s.Kind == kind }
}

func (f Shows) Create(_ context.Context, s *model.Show) (string, error) {
	return f.create(func(id string) { s.ID = id }, s), nil
}
func (f Shows) GetByID(_ context.Context, kind model.ShowKind, id string) (*model.Show, error) {
	if s := f.get(id); s != nil && s.Kind == kind {
		return s, nil
	}
	return nil, nil
}
func (f Shows) List(_ context.Context, kind model.ShowKind) ([]*model.Show, error) {
	return f.all(ofKind(kind)), nil
}
func (f Shows) Update(_ context.Context, s *model.Show) (bool, error) {
	if cur := f.get(s.ID); cur == nil || cur.Kind != s.Kind {
		return false, nil
	}
	return f.replace(s.ID, s), nil
}
func (f Shows) Delete(_ context.Context, kind model.ShowKind, id string) (bool, error) {
	if cur := f.get(id); cur == nil || cur.Kind != kind {
		return false, nil
	}
	return f.remove(id), nil
}
func (f Shows) Count(_ context.Context, kind model.ShowKind) (int64, error) {
	return int64(len(f.all(ofKind(kind)))), nil
}

type Channels struct{ *memDocs[model.LiveChannel] }

func (f Channels) Create(_ context.Context, c *model.LiveChannel) (string, error) {
	return f.create(func(id string) { c.ID = id }, c), nil
}
func (f Channels) GetByID(_ context.Context, id string) (*model.LiveChannel, error) {
	return f.get(id), nil
}
func (f Channels) List(_ context.Context) ([]*model.LiveChannel, error) { return f.all(nil), nil }
func (f Channels) Update(_ context.Context, c *model.LiveChannel) (bool, error) {
	return f.replace(c.ID, c), nil
}
func (f Channels) Delete(_ context.Context, id string) (bool, error) { return f.remove(id), nil }
func (f Channels) Count(_ context.Context) (int64, error)           { return int64(len(f.all(nil))), nil }

type Backgrounds struct{ *memDocs[model.BackgroundImage] }

func (f Backgrounds) Create(_ context.Context, b *model.BackgroundImage) (string, error) {
	return f.create(func(id string) { b.ID = id }, b), nil
}
func (f Backgrounds) GetByID(_ context.Context, id string) (*model.BackgroundImage, error) {
	return f.get(id), nil
}
func (f Backgrounds) List(_ context.Context, activeOnly bool) ([]*model.BackgroundImage, error) {
	out := f.all(func(b *model.BackgroundImage) bool { return !activeOnly || b.Active })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}
func (f Backgrounds) Update(_ context.Context, b *model.BackgroundImage) (bool, error) {
	return f.replace(b.ID, b), nil
}
func (f Backgrounds) Delete(_ context.Context, id string) (bool, error) { return f.remove(id), nil }

type Settings struct {
	mu  sync.Mutex
	msg *model.WelcomeMessage
}

func (f *Settings) GetWelcome(_ context.Context) (*model.WelcomeMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.msg == nil {
		return nil, nil
	}
	cp := *f.msg
	return &cp, nil
}

func (f *Settings) SetWelcome(_ context.Context, msg *model.WelcomeMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *msg
	f.msg = &cp
	return nil
}

func NewMovies() Movies           { return Movies{newMemDocs[model.Movie]()} }
func NewShows() Shows             { return Shows{newMemDocs[model.Show]()} }
func NewChannels() Channels       { return Channels{newMemDocs[model.LiveChannel]()} }
func NewBackgrounds() Backgrounds { return Backgrounds{newMemDocs[model.BackgroundImage]()} }

var (
	_ repository.AccessCodeRepo  = (*Codes)(nil)
	_ repository.MovieRepo       = Movies{}
	_ repository.ShowRepo        = Shows{}
	_ repository.LiveChannelRepo = Channels{}
	_ repository.BackgroundRepo  = Backgrounds{}
	_ repository.SettingsRepo    = (*Settings)(nil)
)
