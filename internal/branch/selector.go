// Package branch выбирает филиал заведения, который обслужит заказ.
package branch

import (
	"context"
	"fmt"
	"math"
	"order_lifecycle/internal/cache"
	"order_lifecycle/internal/geo"
	"order_lifecycle/internal/model"
	"time"
)

// Source отдает филиалы заведения вместе с расписанием.
type Source interface {
	ListBranches(ctx context.Context, institutionID int64) ([]model.Branch, error)
}

// Selector подбирает ближайший подходящий филиал.
type Selector struct {
	source Source
	cache  cache.Cache
	now    func() time.Time
}

// NewSelector создает Selector. cache может быть nil.
func NewSelector(source Source, c cache.Cache) *Selector {
	return &Selector{source: source, cache: c, now: time.Now}
}

// Branches возвращает филиалы заведения, по возможности из кэша.
func (s *Selector) Branches(ctx context.Context, institutionID int64) ([]model.Branch, error) {
	key := cache.BranchesKey(institutionID)
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, key); ok {
			if branches, ok := v.([]model.Branch); ok {
				return branches, nil
			}
		}
	}

	branches, err := s.source.ListBranches(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить филиалы заведения %d: %w", institutionID, err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, branches)
	}
	return branches, nil
}

// Suitable возвращает ближайший открытый по расписанию филиал или nil.
func (s *Selector) Suitable(ctx context.Context, institutionID int64, dest model.Address) (*model.Branch, error) {
	branches, err := s.Branches(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	return FindSuitable(branches, dest, s.now()), nil
}

// Select ищет подходящий филиал, а при его отсутствии - любой ближайший.
func (s *Selector) Select(ctx context.Context, institutionID int64, dest model.Address) (*model.Branch, error) {
	branches, err := s.Branches(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	if b := FindSuitable(branches, dest, s.now()); b != nil {
		return b, nil
	}
	return FindAnother(branches, dest), nil
}

// FindSuitable оставляет доступные, открытые, имеющие адрес и работающие сейчас по расписанию
// филиалы и возвращает ближайший к точке назначения.
func FindSuitable(branches []model.Branch, dest model.Address, now time.Time) *model.Branch {
	return nearest(branches, dest, func(b *model.Branch) bool {
		return b.IsActive && !b.IsDeleted && b.IsOpen && b.Address != nil && OpenBySchedule(b.Schedule, now)
	})
}

// FindAnother ослабляет условия: сначала активные и открытые филиалы, затем любые с адресом.
func FindAnother(branches []model.Branch, dest model.Address) *model.Branch {
	if b := nearest(branches, dest, func(b *model.Branch) bool {
		return b.IsActive && b.IsOpen && b.Address != nil
	}); b != nil {
		return b
	}
	return nearest(branches, dest, func(b *model.Branch) bool {
		return b.Address != nil
	})
}

func nearest(branches []model.Branch, dest model.Address, keep func(*model.Branch) bool) *model.Branch {
	var (
		best     *model.Branch
		bestDist = math.Inf(1)
	)
	for i := range branches {
		b := &branches[i]
		if !keep(b) {
			continue
		}
		if d := geo.Distance(dest, *b.Address); d < bestDist {
			best, bestDist = b, d
		}
	}
	if best == nil {
		return nil
	}
	found := *best
	return &found
}
