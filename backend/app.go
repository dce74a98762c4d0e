package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"time"

	"github.com/20after4/configdir"
	"github.com/dweymouth/mpris-rpc/backend/discord"
	"github.com/dweymouth/mpris-rpc/backend/mpris"
)

const configFile = "config.toml"

type App struct {
	Config   *Config
	SyncLoop *SyncLoop

	appName       string
	appVersionTag string
	discordAppID  string
	configPath    string
	bus           *mpris.Conn
	client        *discord.Client
	watcher       *ConfigWatcher
	updateChecker *UpdateChecker
}

// StartupApp reads the config and connects to the session bus.
// The Discord connection is made by Run, since Discord may not be up yet.
func StartupApp(appName, appVersionTag, latestReleaseURL, discordAppID string) (*App, error) {
	cfgPath := *FlagConfig
	if cfgPath == "" {
		confDir := configdir.LocalConfig(appName)
		// ensure config dir exists
		configdir.MakePath(confDir)
		cfgPath = path.Join(confDir, configFile)
	}

	log.Printf("Starting %s %s...", appName, appVersionTag)
	log.Printf("Using config file: %s", cfgPath)

	a := &App{
		appName:       appName,
		appVersionTag: appVersionTag,
		discordAppID:  discordAppID,
		configPath:    cfgPath,
	}
	a.readConfig()
	if *FlagLocalOnly {
		a.Config.Presence.LocalFilesOnly = true
	}

	bus, err := mpris.ConnectSessionBus(a.Config.CallTimeout())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	if err := bus.Subscribe(); err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to subscribe to player signals: %w", err)
	}
	a.bus = bus

	a.client = discord.NewClient(a.Config.Discord.ApplicationID)
	a.SyncLoop = NewSyncLoop(a.Config, mpris.NewClient(bus), bus, a.client)
	a.SyncLoop.Verbose = *FlagVerbose

	if a.Config.Application.CheckForUpdates {
		a.updateChecker = NewUpdateChecker(appVersionTag, latestReleaseURL)
	}
	if w, err := NewConfigWatcher(cfgPath, discordAppID); err == nil {
		a.watcher = w
	} else {
		log.Printf("Config changes will not be picked up until restart: %v", err)
	}
	return a, nil
}

// Run synchronizes presence until ctx is done. Bus failures and player
// protocol violations end it with an error.
func (a *App) Run(ctx context.Context) error {
	if a.updateChecker != nil {
		a.updateChecker.Start(ctx, 24*time.Hour)
	}
	if a.watcher != nil {
		reloads := make(chan *Config, 1)
		a.watcher.Start(ctx)
		go a.forwardReloads(ctx, reloads)
		a.SyncLoop.SetConfigReloads(reloads)
	}
	return a.SyncLoop.Run(ctx)
}

// keeps command line overrides in effect across reloads
func (a *App) forwardReloads(ctx context.Context, out chan *Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-a.watcher.Reloads():
			if *FlagLocalOnly {
				cfg.Presence.LocalFilesOnly = true
			}
			if cfg.Discord.ApplicationID != a.Config.Discord.ApplicationID {
				log.Println("Discord application ID changes take effect after restart")
			}
			// only the newest config matters
			select {
			case <-out:
			default:
			}
			out <- cfg
		}
	}
}

func (a *App) Shutdown() {
	if a.client.Connected() {
		if err := a.client.ClearActivity(); err != nil && !errors.Is(err, discord.ErrNotConnected) {
			log.Printf("Error clearing activity: %v", err)
		}
	}
	a.client.Close()
	a.bus.Close()
}

func (a *App) readConfig() {
	var cfgExists bool
	if _, err := os.Stat(a.configPath); err == nil {
		cfgExists = true
	}
	cfg, err := ReadConfigFile(a.configPath, a.discordAppID)
	if err != nil {
		if cfgExists {
			log.Printf("Error reading config file: %v", err)
			backupCfgName := fmt.Sprintf("%s.bak", a.configPath)
			log.Printf("Config file may be malformed: copying to %s", backupCfgName)
			_ = copyFile(a.configPath, backupCfgName)
		}
		cfg = DefaultConfig(a.discordAppID)
		if !cfgExists {
			if err := cfg.WriteConfigFile(a.configPath); err != nil {
				log.Printf("Error writing default config file: %v", err)
			}
		}
	}
	a.Config = cfg
}

func copyFile(srcPath, dstPath string) error {
	b, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return os.WriteFile(dstPath, b, 0644)
}
