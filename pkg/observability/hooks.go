package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/storyline/pkg/domain"
)

// ComposeHooks returns hooks that call every non-nil hook of each set, in order.
func ComposeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var launchStart, launchFinish, serviceDown []func(context.Context, *domain.LaunchEvent)
	var itemStart, itemFinish []func(context.Context, *domain.ItemEvent)

	for _, h := range sets {
		if h.OnLaunchStart != nil {
			launchStart = append(launchStart, h.OnLaunchStart)
		}
		if h.OnLaunchFinish != nil {
			launchFinish = append(launchFinish, h.OnLaunchFinish)
		}
		if h.OnServiceDown != nil {
			serviceDown = append(serviceDown, h.OnServiceDown)
		}
		if h.OnItemStart != nil {
			itemStart = append(itemStart, h.OnItemStart)
		}
		if h.OnItemFinish != nil {
			itemFinish = append(itemFinish, h.OnItemFinish)
		}
	}

	return domain.LifecycleHooks{
		OnLaunchStart:  chain(launchStart),
		OnLaunchFinish: chain(launchFinish),
		OnServiceDown:  chain(serviceDown),
		OnItemStart:    chain(itemStart),
		OnItemFinish:   chain(itemFinish),
	}
}

func chain[E any](fns []func(context.Context, E)) func(context.Context, E) {
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(ctx context.Context, e E) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}

// LoggingHooks logs every lifecycle event at DEBUG, and failures at WARN.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	launch := func(ctx context.Context, e *domain.LaunchEvent) {
		level := slog.LevelDebug
		if e.Err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, string(e.Type), "launch_id", e.LaunchID, "name", e.Name, "err", e.Err)
	}
	item := func(ctx context.Context, e *domain.ItemEvent) {
		level := slog.LevelDebug
		if e.Err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, string(e.Type),
			"item_type", e.ItemType,
			"item_id", e.ItemID,
			"parent_id", e.ParentID,
			"name", e.Name,
			"status", e.Status,
			"duration", e.Duration,
			"forced", e.Forced,
			"err", e.Err,
		)
	}
	return domain.LifecycleHooks{
		OnLaunchStart:  launch,
		OnLaunchFinish: launch,
		OnServiceDown:  launch,
		OnItemStart:    item,
		OnItemFinish:   item,
	}
}
