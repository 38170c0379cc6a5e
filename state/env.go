// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"cbundle/config"
	"cbundle/evidence"
	"cbundle/storage"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// opened lazily by commands which need them
	DB    *storage.DB
	Cache *evidence.Cache

	// used by file and export subcommands
	Overwrite bool
	CodePage  encoding.Encoding

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// OpenDB opens configured bundle database once.
func (e *LocalEnv) OpenDB() (*storage.DB, error) {
	if e.DB != nil {
		return e.DB, nil
	}
	db, err := storage.Open(e.Cfg.Storage.Database, e.Log)
	if err != nil {
		return nil, err
	}
	e.DB = db
	return db, nil
}

// OpenProvider returns evidence inspector backed by configured cache. Cache
// is optional, failure to open it is logged and inspection continues
// without it.
func (e *LocalEnv) OpenProvider() *evidence.Provider {
	if e.Cache == nil && len(e.Cfg.Evidence.Cache) > 0 {
		cache, err := evidence.OpenCache(e.Cfg.Evidence.Cache)
		if err != nil {
			e.Log.Warn("Evidence cache is not available", zap.Error(err))
		} else {
			e.Cache = cache
		}
	}
	return evidence.NewProvider(e.Cache, e.Cfg.Evidence.Strict, e.Log)
}

// Close releases storage opened by commands.
func (e *LocalEnv) Close() (err error) {
	if e.Cache != nil {
		if er := e.Cache.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close evidence cache: %w", er))
		}
		e.Cache = nil
	}
	if e.DB != nil {
		if er := e.DB.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close database: %w", er))
		}
		e.DB = nil
	}
	return err
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
