// cache — кэш результатов запросов к API с временем "свежести" (stale time)
// и инвалидацией по префиксу ключа.
//
// Ключ — последовательность сегментов ("dogs", "<query>"). InvalidatePrefix("dogs")
// удаляет все ключи, начинающиеся с сегмента "dogs", но не "dogsx".
// Параллельные Fetch по одному ключу сводятся к одному вызову загрузчика.
// Устаревшие записи вытесняются при чтении и периодической чисткой в Set;
// число записей ограничено MaxEntries.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const sep = "\x1f"

const (
	// DefaultLoadTimeout — верхняя граница общей загрузки в Fetch.
	DefaultLoadTimeout = 30 * time.Second
	// DefaultMaxEntries — предел числа записей.
	DefaultMaxEntries = 10000

	sweepInterval = time.Minute
)

type entry struct {
	value   any
	expires time.Time
}

// Cache — потокобезопасный кэш. Нулевой указатель допустим: кэширование отключено.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	lastSweep time.Time

	loadTimeout time.Duration
	maxEntries  int

	group singleflight.Group
}

// Option настраивает Cache.
type Option func(*Cache)

// WithLoadTimeout ограничивает время общей загрузки; <=0 — без ограничения.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) { c.loadTimeout = d }
}

// WithMaxEntries задаёт предел числа записей; <=0 — без предела.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxEntries = n }
}

// New создаёт пустой кэш.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[string]entry),
		now:         time.Now,
		loadTimeout: DefaultLoadTimeout,
		maxEntries:  DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key склеивает сегменты в ключ.
func Key(parts ...string) string { return strings.Join(parts, sep) }

// Get возвращает свежее значение по ключу; устаревшая запись удаляется.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if now := c.now(); !now.Before(e.expires) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !now.Before(cur.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		return nil, false
	}

	return e.value, true
}

// Set сохраняет значение на ttl. ttl <= 0 — не сохраняет (данные сразу устаревшие).
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= sweepInterval {
		c.sweepLocked(now)
	}

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.sweepLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictLocked()
		}
	}

	c.entries[key] = entry{value: value, expires: now.Add(ttl)}
}

// sweepLocked удаляет все устаревшие записи. Вызывается под c.mu.
func (c *Cache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}

	c.lastSweep = now
}

// evictLocked удаляет запись, которая устареет раньше остальных. Вызывается под c.mu.
func (c *Cache) evictLocked() {
	var (
		victim string
		first  time.Time
		found  bool
	)

	for k, e := range c.entries {
		if !found || e.expires.Before(first) {
			victim, first, found = k, e.expires, true
		}
	}

	if found {
		delete(c.entries, victim)
	}
}

// InvalidatePrefix удаляет все ключи, начинающиеся с сегментов parts.
func (c *Cache) InvalidatePrefix(parts ...string) int {
	if c == nil {
		return 0
	}

	prefix := Key(parts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if k == prefix || strings.HasPrefix(k, prefix+sep) {
			delete(c.entries, k)
			n++
		}
	}

	return n
}

// Len — число записей (включая устаревшие, ещё не вытесненные).
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Fetch возвращает значение из кэша или вызывает load и кэширует результат на ttl.
// Ошибки не кэшируются.
//
// Общая загрузка идёт на контексте, отвязанном от отмены конкретного вызывающего
// (context.WithoutCancel) и ограниченном LoadTimeout: отмена одного клиента не
// роняет остальных, ждущих тот же ключ. Каждый вызывающий ждёт результат не дольше
// своего ctx.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if c == nil {
		return load(ctx)
	}

	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, c.loadTimeout)
			defer cancel()
		}

		res, err := load(lctx)
		if err != nil {
			return nil, err
		}

		c.Set(key, res, ttl)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}

		return r.Val.(T), nil
	}
}
