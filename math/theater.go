// math/theater.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	"maps"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Transformer maps geographic coordinates to a theater's planar frame
// and back.
type Transformer interface {
	ToPlanar(theater string, p Point2LL) (Point2XZ, error)
	ToLatLong(theater string, p Point2XZ) (Point2LL, error)
}

const DefaultTransformCacheSize = 4096

// Theaters holds the projection used by each supported theater, keyed by
// the theater name recorded in mission files.
var Theaters = map[string]TransverseMercator{
	"Caucasus": {
		CentralMeridian: 33,
		FalseEasting:    -99516.9999999732,
		FalseNorthing:   -4998114.999999984,
		ScaleFactor:     0.9996,
	},
	"Nevada": {
		CentralMeridian: -117,
		FalseEasting:    -193996.80999964548,
		FalseNorthing:   -4410028.063999966,
		ScaleFactor:     0.9996,
	},
	"PersianGulf": {
		CentralMeridian: 57,
		FalseEasting:    75755.99999999645,
		FalseNorthing:   -2894933.0000000377,
		ScaleFactor:     0.9996,
	},
	"Syria": {
		CentralMeridian: 39,
		FalseEasting:    282801.00000003993,
		FalseNorthing:   -3879865.9999999935,
		ScaleFactor:     0.9996,
	},
	"MarianaIslands": {
		CentralMeridian: 147,
		FalseEasting:    238417.99999989968,
		FalseNorthing:   -1491840.000000048,
		ScaleFactor:     0.9996,
	},
	"Normandy": {
		CentralMeridian: -3,
		FalseEasting:    -195526.00000000204,
		FalseNorthing:   -5484812.999999951,
		ScaleFactor:     0.9996,
	},
	"TheChannel": {
		CentralMeridian: 3,
		FalseEasting:    99376.00000000288,
		FalseNorthing:   -5636889.00000001,
		ScaleFactor:     0.9996,
	},
	"SinaiMap": {
		CentralMeridian: 33,
		FalseEasting:    169222.99999999953,
		FalseNorthing:   -3325313.9999999995,
		ScaleFactor:     0.9996,
	},
	"Falklands": {
		CentralMeridian: -57,
		FalseEasting:    147639.99999997593,
		FalseNorthing:   5815417.000000032,
		ScaleFactor:     0.9996,
	},
	"Kola": {
		CentralMeridian: 21,
		FalseEasting:    -62702.00000000087,
		FalseNorthing:   -7543624.999999979,
		ScaleFactor:     0.9996,
	},
	"Afghanistan": {
		CentralMeridian: 63,
		FalseEasting:    -300150.0000000014,
		FalseNorthing:   -3759657.000000002,
		ScaleFactor:     0.9996,
	},
}

type planarKey struct {
	theater string
	p       Point2LL
}

// TheaterTransformer is the default Transformer. Results are memoized in
// an LRU cache.
type TheaterTransformer struct {
	projections map[string]TransverseMercator
	cache       *lru.Cache[planarKey, Point2XZ]
}

// NewTheaterTransformer returns a transformer for the built-in theaters,
// with overrides replacing or adding entries. A cacheSize <= 0 selects
// DefaultTransformCacheSize.
func NewTheaterTransformer(cacheSize int, overrides map[string]TransverseMercator) (*TheaterTransformer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultTransformCacheSize
	}
	cache, err := lru.New[planarKey, Point2XZ](cacheSize)
	if err != nil {
		return nil, err
	}

	tt := &TheaterTransformer{
		projections: maps.Clone(Theaters),
		cache:       cache,
	}
	for name, tm := range overrides {
		if err := tm.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tt.projections[name] = tm
	}
	return tt, nil
}

func (tt *TheaterTransformer) ToPlanar(theater string, p Point2LL) (Point2XZ, error) {
	tm, ok := tt.projections[theater]
	if !ok {
		return Point2XZ{}, fmt.Errorf("%q: %w", theater, ErrUnsupportedTheater)
	}
	if !p.Valid() {
		return Point2XZ{}, fmt.Errorf("%v: %w", p, ErrInvalidLatLong)
	}

	key := planarKey{theater: theater, p: p}
	if xz, ok := tt.cache.Get(key); ok {
		return xz, nil
	}
	xz := tm.Forward(p)
	tt.cache.Add(key, xz)
	return xz, nil
}

// ToLatLong is the inverse of ToPlanar; it is not cached.
func (tt *TheaterTransformer) ToLatLong(theater string, p Point2XZ) (Point2LL, error) {
	tm, ok := tt.projections[theater]
	if !ok {
		return Point2LL{}, fmt.Errorf("%q: %w", theater, ErrUnsupportedTheater)
	}
	return tm.Inverse(p), nil
}

// TheaterNames returns the supported theater names in sorted order.
func (tt *TheaterTransformer) TheaterNames() []string {
	return slices.Sorted(maps.Keys(tt.projections))
}

func (tt *TheaterTransformer) CachedPoints() int {
	return tt.cache.Len()
}
