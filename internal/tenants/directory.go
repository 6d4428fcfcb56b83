package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const directoryKeyPrefix = "directory:"

// Directory serves the public university/faculty/course listings backing the
// login and registration screens. Results come from Redis when warm; misses
// are deduplicated through singleflight so one stampede hits Postgres once.
type Directory struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewDirectory wires the directory read model.
func NewDirectory(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Directory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Directory{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Universities lists active tenants.
func (d *Directory) Universities(ctx context.Context) ([]DirectoryUniversity, error) {
	return cached(ctx, d, directoryKeyPrefix+"universities", func() ([]DirectoryUniversity, error) {
		return d.repo.ActiveUniversities(ctx)
	})
}

// Faculties lists active faculties of one active tenant.
func (d *Directory) Faculties(ctx context.Context, tenantID uuid.UUID) ([]DirectoryFaculty, error) {
	key := directoryKeyPrefix + "faculties:" + tenantID.String()
	return cached(ctx, d, key, func() ([]DirectoryFaculty, error) {
		return d.repo.FacultiesOf(ctx, tenantID)
	})
}

// Courses lists active courses of one faculty.
func (d *Directory) Courses(ctx context.Context, facultyID uuid.UUID) ([]DirectoryCourse, error) {
	key := directoryKeyPrefix + "courses:" + facultyID.String()
	return cached(ctx, d, key, func() ([]DirectoryCourse, error) {
		return d.repo.CoursesOf(ctx, facultyID)
	})
}

// Invalidate drops every directory key. Called after any mutation that can
// change what the public listings show.
func (d *Directory) Invalidate(ctx context.Context) {
	if d == nil || d.cache == nil {
		return
	}
	iter := d.cache.Scan(ctx, 0, directoryKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := d.cache.Del(ctx, iter.Val()).Err(); err != nil {
			d.logger.Warn("directory cache delete failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		d.logger.Warn("directory cache scan failed", "error", err)
	}
}

// cached runs the Redis read-through for one key. Cache failures degrade to
// the database; they are logged, never surfaced.
func cached[T any](ctx context.Context, d *Directory, key string, load func() ([]T, error)) ([]T, error) {
	if d.cache != nil {
		raw, err := d.cache.Get(ctx, key).Bytes()
		if err == nil {
			var out []T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
			d.logger.Warn("directory cache entry corrupt", "key", key)
		} else if err != redis.Nil {
			d.logger.Warn("directory cache read failed", "key", key, "error", err)
		}
	}

	v, err, _ := d.group.Do(key, func() (any, error) {
		out, err := load()
		if err != nil {
			return nil, err
		}
		if d.cache != nil {
			raw, err := json.Marshal(out)
			if err == nil {
				if err := d.cache.Set(ctx, key, raw, d.ttl).Err(); err != nil {
					d.logger.Warn("directory cache write failed", "key", key, "error", err)
				}
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("directory load %s: %w", key, err)
	}
	return v.([]T), nil
}
