package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/cache"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

const (
	tipTTL = 24 * time.Hour
	// tipSyncInterval bounds how long an instance serves its slot before re-reading the
	// shared cache, where refreshes from the worker or other replicas land.
	tipSyncInterval = time.Minute
)

// Tip is the developer tip of a given day.
type Tip struct {
	Tip  string `json:"tip"`
	Date string `json:"date"`
}

type TipService interface {
	// Today returns the current tip, generating it on first use of the day. A stale tip
	// is served when generation fails.
	Today(ctx context.Context) (*Tip, error)
	// Refresh generates a new tip for today unconditionally.
	Refresh(ctx context.Context) (*Tip, error)
}

type tipService struct {
	gen   provider.TipGenerator
	cache cache.Cache
	loc   *time.Location
	now   func() time.Time
	log   logrus.FieldLogger

	mu        sync.RWMutex
	current   *Tip
	checkedAt time.Time
	// genMu serializes generation so a burst of first requests calls the provider once.
	genMu sync.Mutex
}

func NewTipService(gen provider.TipGenerator, c cache.Cache, loc *time.Location, log logrus.FieldLogger) TipService {
	if loc == nil {
		loc = time.UTC
	}
	return &tipService{
		gen:   gen,
		cache: c,
		loc:   loc,
		now:   time.Now,
		log:   log.WithField("component", "tips"),
	}
}

func (s *tipService) today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

func (s *tipService) slot(date string) (*Tip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != nil && s.current.Date == date {
		t := *s.current
		return &t, true
	}
	return nil, false
}

// fresh returns the slot when it holds date and was synced with the cache recently.
func (s *tipService) fresh(date string) (*Tip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Date != date || s.now().Sub(s.checkedAt) >= tipSyncInterval {
		return nil, false
	}
	t := *s.current
	return &t, true
}

func (s *tipService) stale() *Tip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

func (s *tipService) store(t *Tip) {
	s.mu.Lock()
	s.current = t
	s.checkedAt = s.now()
	s.mu.Unlock()
}

func (s *tipService) Today(ctx context.Context) (*Tip, error) {
	date := s.today()
	if t, ok := s.fresh(date); ok {
		return t, nil
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if t, ok := s.fresh(date); ok {
		return t, nil
	}
	if t := s.fromCache(ctx, date); t != nil {
		s.store(t)
		return t, nil
	}
	// Cache evicted or unreachable: keep serving today's slot.
	if t, ok := s.slot(date); ok {
		s.store(t)
		return t, nil
	}
	t, err := s.generate(ctx, date)
	if err != nil {
		if old := s.stale(); old != nil {
			s.log.WithError(err).WithField("stale_date", old.Date).Warn("serving stale tip")
			return old, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *tipService) Refresh(ctx context.Context) (*Tip, error) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generate(ctx, s.today())
}

func (s *tipService) generate(ctx context.Context, date string) (*Tip, error) {
	text, err := s.gen.GenerateTip(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty tip", ErrProvider)
	}
	t := &Tip{Tip: text, Date: date}
	s.store(t)
	if err := s.cache.Set(ctx, "tip:"+date, []byte(text), tipTTL); err != nil {
		s.log.WithError(err).Warn("tip not cached")
	}
	s.log.WithField("date", date).Info("tip generated")
	return t, nil
}

func (s *tipService) fromCache(ctx context.Context, date string) *Tip {
	b, err := s.cache.Get(ctx, "tip:"+date)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.WithError(err).Warn("tip cache unavailable")
		}
		return nil
	}
	return &Tip{Tip: string(b), Date: date}
}
