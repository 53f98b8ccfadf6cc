// Package main provides the room host binary: it accepts the headless page's
// bridge connection, runs the room and its modules, and serves the admin API.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/adminapi"
	"github.com/cory-johannsen/haxroom/internal/bridge"
	"github.com/cory-johannsen/haxroom/internal/config"
	"github.com/cory-johannsen/haxroom/internal/game/module"
	"github.com/cory-johannsen/haxroom/internal/game/role"
	"github.com/cory-johannsen/haxroom/internal/geo"
	"github.com/cory-johannsen/haxroom/internal/modules/builtin"
	"github.com/cory-johannsen/haxroom/internal/observability"
	"github.com/cory-johannsen/haxroom/internal/room"
	"github.com/cory-johannsen/haxroom/internal/scripting"
	"github.com/cory-johannsen/haxroom/internal/server"
	"github.com/cory-johannsen/haxroom/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/room.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config; missing is fine")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Room.Name)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, releaseStore, err := storage.OpenHistory(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening history", zap.Error(err))
	}

	opts := []room.Option{room.WithHistory(store)}
	if cfg.Geo.Enabled {
		locator, err := geo.NewLocator(geo.Config{
			Endpoint:      cfg.Geo.Endpoint,
			Timeout:       cfg.Geo.Timeout,
			RatePerMinute: cfg.Geo.RatePerMinute,
		}, &http.Client{Timeout: cfg.Geo.Timeout})
		if err != nil {
			logger.Fatal("creating geolocator", zap.Error(err))
		}
		opts = append(opts, room.WithLocator(locator), room.WithLookupTimeout(cfg.Geo.Timeout))
	}

	host := bridge.New(cfg.Bridge, logger)
	r := room.New(host, room.Config{
		RoomConfig:          cfg.Room.Native(),
		Prefix:              cfg.Commands.Prefix,
		CommandsCooldown:    cfg.Commands.Cooldown,
		NoPermissionMessage: cfg.Commands.NoPermissionMessage,
		CooldownMessage:     cfg.Commands.CooldownMessage,
	}, logger, opts...)

	scripts := scripting.NewLoader(logger, 0)
	if err := attachModules(r, &cfg, scripts, logger); err != nil {
		logger.Fatal("attaching modules", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("history", server.CloserService(releaseStore))
	lifecycle.Add("scripting", server.CloserService(scripts.Close))
	lifecycle.Add("room", server.CloserService(r.Close))
	lifecycle.Add("bridge", host)
	if cfg.Admin.Enabled {
		lifecycle.Add("admin", adminapi.New(cfg.Admin, r, store, logger))
	}

	logger.Info("room host initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("bridge_addr", cfg.Bridge.Addr()),
		zap.Strings("modules", r.Modules()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("room host error", zap.Error(err))
	}
}

// attachModules loads roles, the builtin modules and the Lua modules into r.
func attachModules(r *room.Room, cfg *config.Config, scripts *scripting.Loader, logger *zap.Logger) error {
	var roles map[string]*role.Role
	if cfg.RolesFile != "" {
		var err error
		if roles, err = role.LoadFile(cfg.RolesFile); err != nil {
			return err
		}
		logger.Info("loaded roles", zap.Int("count", len(roles)))
	}

	var lua []*module.Module
	if cfg.ModulesDir != "" {
		var err error
		if lua, err = scripts.LoadDir(cfg.ModulesDir, r); err != nil {
			return err
		}
	}

	var err error
	r.Do(func() {
		if roles != nil {
			if err = r.Use("roles", builtin.Roles(roles), module.Options{}); err != nil {
				return
			}
		}
		if err = r.Use("core", builtin.Core, module.Options{}); err != nil {
			return
		}
		if cfg.ClaimPasswordHash != "" {
			if err = r.Use("claim", builtin.Claim(cfg.ClaimPasswordHash), module.Options{}); err != nil {
				return
			}
		}
		for _, m := range lua {
			if err = r.Attach(m); err != nil {
				return
			}
		}
	})
	return err
}
