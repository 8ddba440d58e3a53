package apprepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/marathon/pkg/cache"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type CachedConfig struct {
	Persistent     Repo          `validate:"required"`
	CacheExpiry    time.Duration `validate:"required"`
	CachePrefixKey string        `validate:"required,alphanumeric"`
	Cache          cache.Cache   `validate:"required"`
}

// CachedRepo read app by id from cache first. Writes always go to persistent storage.
type CachedRepo struct {
	Config CachedConfig
}

var _ Repo = (*CachedRepo)(nil)

func NewCached(cfg CachedConfig) (*CachedRepo, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &CachedRepo{
		Config: cfg,
	}, nil
}

func (c *CachedRepo) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	out, err = c.Config.Persistent.Create(ctx, in)
	if err != nil {
		return
	}

	c.setByID(ctx, out.App)
	return
}

func (c *CachedRepo) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	out, err = c.Config.Persistent.Update(ctx, in)
	if err != nil {
		return
	}

	c.setByID(ctx, out.App)
	return
}

func (c *CachedRepo) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	app, err := c.getByID(ctx, in.ID)
	if err == nil && app.ID == in.ID {
		out = OutGetByID{App: app}
		return
	}

	if err != nil && !errors.Is(err, cache.ErrKeyNotExist) {
		ylog.Error(ctx, fmt.Sprintf("app id %s error get from cache", in.ID), ylog.KV("error", err))
	}

	out, err = c.Config.Persistent.GetByID(ctx, in)
	if err != nil {
		return
	}

	c.setByID(ctx, out.App)
	return
}

// List of cached apps now will not use cache. It hard to maintain list in cache.
func (c *CachedRepo) List(ctx context.Context, in InputList) (out OutList, err error) {
	return c.Config.Persistent.List(ctx, in)
}

func (c *CachedRepo) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	out, err = c.Config.Persistent.DelByID(ctx, in)
	if err != nil {
		return
	}

	if _err := c.delByID(ctx, in.ID); _err != nil {
		ylog.Error(ctx, fmt.Sprintf("cannot delete cache app id %s", in.ID), ylog.KV("error", _err))
	}

	return
}

// -- cache

func (c *CachedRepo) genCacheKeyByID(id string) string {
	return fmt.Sprintf("%s:%s", c.Config.CachePrefixKey, id)
}

func (c *CachedRepo) getByID(ctx context.Context, id string) (App, error) {
	var app App
	err := c.Config.Cache.GetAs(ctx, c.genCacheKeyByID(id), &app)
	if err != nil {
		return App{}, err
	}

	ylog.Debug(ctx, fmt.Sprintf("get app id %s from cache", id))
	return app, nil
}

func (c *CachedRepo) setByID(ctx context.Context, app App) {
	err := c.Config.Cache.SetExp(ctx, c.genCacheKeyByID(app.ID), app, c.Config.CacheExpiry)
	if err != nil {
		ylog.Error(ctx, fmt.Sprintf("cannot save cache app id %s", app.ID), ylog.KV("error", err))
		return
	}

	ylog.Debug(ctx, fmt.Sprintf("caching app id %s", app.ID))
}

func (c *CachedRepo) delByID(ctx context.Context, id string) error {
	return c.Config.Cache.Delete(ctx, c.genCacheKeyByID(id))
}
