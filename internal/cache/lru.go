package cache

import (
	"container/list"
	"context"
	"fmt"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

//go:generate mockgen -source=lru.go -destination=./mocks/cache_mock.go -package=mocks Cache

// Cache определяет интерфейс для кэширования справочных данных (тарифы, филиалы, заказы на чтение).
// Контекст нужен для сквозной трассировки.
type Cache interface {
	Set(ctx context.Context, key string, value interface{})
	Get(ctx context.Context, key string) (interface{}, bool)
	Delete(ctx context.Context, key string)
}

// Ключи кэша.
const GlobalSettingsKey = "settings:global"

func BranchesKey(institutionID int64) string { return fmt.Sprintf("branches:%d", institutionID) }

func OrderKey(orderID int64) string { return fmt.Sprintf("order:%d", orderID) }

// lruCache реализует LRU-кэш с необязательным временем жизни записей.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	queue    *list.List
	now      func() time.Time
	tracer   trace.Tracer
}

type cacheItem struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// NewLRUCache создает LRU-кэш заданной емкости. ttl <= 0 - записи не устаревают.
func NewLRUCache(capacity int, ttl time.Duration) Cache {
	return &lruCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		queue:    list.New(),
		now:      time.Now,
		tracer:   otel.Tracer("lru-cache"),
	}
}

func (c *lruCache) Set(ctx context.Context, key string, value interface{}) {
	_, span := c.tracer.Start(ctx, "Cache.Set")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return
	}

	if element, exists := c.items[key]; exists {
		c.queue.MoveToFront(element)
		item := element.Value.(*cacheItem)
		item.value = value
		item.expiresAt = c.expiry()
		return
	}

	if c.queue.Len() >= c.capacity {
		c.removeOldest()
	}

	element := c.queue.PushFront(&cacheItem{key: key, value: value, expiresAt: c.expiry()})
	c.items[key] = element

	metrics.CacheSize.Set(float64(c.queue.Len()))
}

func (c *lruCache) Get(ctx context.Context, key string) (interface{}, bool) {
	_, span := c.tracer.Start(ctx, "Cache.Get")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists {
		metrics.CacheMisses.Inc()
		return nil, false
	}

	item := element.Value.(*cacheItem)
	if !item.expiresAt.IsZero() && c.now().After(item.expiresAt) {
		c.removeElement(element)
		metrics.CacheMisses.Inc()
		return nil, false
	}

	c.queue.MoveToFront(element)
	metrics.CacheHits.Inc()
	return item.value, true
}

func (c *lruCache) Delete(ctx context.Context, key string) {
	_, span := c.tracer.Start(ctx, "Cache.Delete")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		c.removeElement(element)
	}
}

func (c *lruCache) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

// removeOldest удаляет самый старый элемент (мьютекс уже захвачен).
func (c *lruCache) removeOldest() {
	if element := c.queue.Back(); element != nil {
		c.removeElement(element)
		metrics.CacheEvictions.Inc()
	}
}

func (c *lruCache) removeElement(element *list.Element) {
	item := c.queue.Remove(element).(*cacheItem)
	delete(c.items, item.key)
	metrics.CacheSize.Set(float64(c.queue.Len()))
}

// WarmSource - источник данных для прогрева кэша.
type WarmSource interface {
	GetGlobalSettings(ctx context.Context) (*model.GlobalSettings, error)
	ListAllBranches(ctx context.Context) ([]model.Branch, error)
}

// WarmUp загружает глобальные тарифы и филиалы заведений в кэш.
func WarmUp(ctx context.Context, source WarmSource, cache Cache, log *zap.Logger) error {
	log.Info("Выполняется прогрев кэша...")

	settings, err := source.GetGlobalSettings(ctx)
	if err != nil {
		return fmt.Errorf("не удалось загрузить глобальные настройки: %w", err)
	}
	cache.Set(ctx, GlobalSettingsKey, settings)

	branches, err := source.ListAllBranches(ctx)
	if err != nil {
		return fmt.Errorf("не удалось загрузить филиалы: %w", err)
	}

	byInstitution := make(map[int64][]model.Branch)
	for _, b := range branches {
		byInstitution[b.InstitutionID] = append(byInstitution[b.InstitutionID], b)
	}
	for id, items := range byInstitution {
		cache.Set(ctx, BranchesKey(id), items)
	}

	log.Info("Кэш прогрет",
		zap.Int("branches", len(branches)),
		zap.Int("institutions", len(byInstitution)))
	return nil
}
