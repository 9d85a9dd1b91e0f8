// Пакет service — бизнес-логика сервиса каталога пользователей.
// FilterOptionsCache — кэш опций фильтров, ключ — поколение датасета.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/presight/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_filter_options_cache_hits_total",
		Help: "Общее количество попаданий в кэш опций фильтров.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_filter_options_cache_misses_total",
		Help: "Общее количество промахов кэша опций фильтров.",
	})
)

// filterOptionsCacheSize — текущее поколение плюс запаздывающее вычисление предыдущего.
const filterOptionsCacheSize = 2

// FilterOptionsCache — memoization опций фильтров на поколение датасета.
// Пока поколение актуально, все вызывающие получают один и тот же указатель.
// Конкурентные первые вызовы разделяют одно вычисление (singleflight).
type FilterOptionsCache struct {
	cache *expirable.LRU[uint64, *model.FilterOptions]
	group singleflight.Group
}

// NewFilterOptionsCache создаёт кэш. ttl <= 0 — без истечения
// (запись живёт до регенерации датасета).
func NewFilterOptionsCache(ttl time.Duration) *FilterOptionsCache {
	return &FilterOptionsCache{
		cache: expirable.NewLRU[uint64, *model.FilterOptions](filterOptionsCacheSize, nil, ttl),
	}
}

// GetOrCompute возвращает опции для поколения generation,
// при промахе вычисляет их через compute и сохраняет.
func (c *FilterOptionsCache) GetOrCompute(generation uint64, compute func() *model.FilterOptions) *model.FilterOptions {
	if opts, ok := c.cache.Get(generation); ok {
		cacheHitsTotal.Inc()
		return opts
	}
	cacheMissesTotal.Inc()

	v, _, _ := c.group.Do(strconv.FormatUint(generation, 10), func() (any, error) {
		// повторная проверка: соседний вызов мог уже заполнить кэш
		if opts, ok := c.cache.Get(generation); ok {
			return opts, nil
		}
		opts := compute()
		c.cache.Add(generation, opts)
		return opts, nil
	})
	return v.(*model.FilterOptions)
}

// Invalidate удаляет записи всех поколений, кроме current
// (вызывается при регенерации датасета).
func (c *FilterOptionsCache) Invalidate(current uint64) {
	for _, generation := range c.cache.Keys() {
		if generation != current {
			c.cache.Remove(generation)
		}
	}
}

// Len — количество закэшированных поколений.
func (c *FilterOptionsCache) Len() int {
	return c.cache.Len()
}
