package backend

import (
	"os"
	"sync"
	"time"

	"github.com/dweymouth/mpris-rpc/backend/presence"
	"github.com/pelletier/go-toml/v2"
)

type AppConfig struct {
	CheckForUpdates bool
}

type DiscordConfig struct {
	ApplicationID string
}

type BusConfig struct {
	CallTimeoutMillis int
}

// SyncConfig holds the timings of the sync loop.
type SyncConfig struct {
	// How long to wait for a player signal before checking for staleness.
	SignalTimeoutSeconds int
	// Republish at least this often, even with no player signals.
	StaleIntervalSeconds int
	// Minimum time between two publishes. 0 disables throttling.
	ThrottleIntervalSeconds int
	// Delay between a player signal and reading its state, so the new
	// position is committed on the bus before we read it.
	ResyncDelayMillis int
	// Retry interval while waiting for Discord to come up.
	ConnectBackoffMillis int
	// Pause after an iteration that did nothing.
	IdleDelayMillis int
}

type PresenceConfig struct {
	LocalFilesOnly bool
	UseArtURL      bool
	FallbackImage  string
	PlayerImages   map[string]string
}

type Config struct {
	Application AppConfig
	Discord     DiscordConfig
	Bus         BusConfig
	Sync        SyncConfig
	Presence    PresenceConfig
}

func DefaultConfig(discordAppID string) *Config {
	return &Config{
		Application: AppConfig{
			CheckForUpdates: true,
		},
		Discord: DiscordConfig{
			ApplicationID: discordAppID,
		},
		Bus: BusConfig{
			CallTimeoutMillis: 5000,
		},
		Sync: DefaultSyncConfig(),
		Presence: PresenceConfig{
			LocalFilesOnly: false,
			UseArtURL:      false,
			FallbackImage:  presence.DefaultFallbackImage,
			PlayerImages:   map[string]string{},
		},
	}
}

func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		SignalTimeoutSeconds:    5,
		StaleIntervalSeconds:    30,
		ThrottleIntervalSeconds: 5,
		ResyncDelayMillis:       1000,
		ConnectBackoffMillis:    1000,
		IdleDelayMillis:         1000,
	}
}

func ReadConfigFile(filepath, discordAppID string) (*Config, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := DefaultConfig(discordAppID)
	if err := toml.NewDecoder(f).Decode(c); err != nil {
		return nil, err
	}
	c.backfill(discordAppID)
	return c, nil
}

// backfill replaces unusable values, e.g. left over from hand edits,
// with their defaults.
func (c *Config) backfill(discordAppID string) {
	if c.Discord.ApplicationID == "" {
		c.Discord.ApplicationID = discordAppID
	}
	if c.Bus.CallTimeoutMillis < 0 {
		c.Bus.CallTimeoutMillis = 5000
	}
	d := DefaultSyncConfig()
	s := &c.Sync
	if s.SignalTimeoutSeconds <= 0 {
		s.SignalTimeoutSeconds = d.SignalTimeoutSeconds
	}
	if s.StaleIntervalSeconds <= 0 {
		s.StaleIntervalSeconds = d.StaleIntervalSeconds
	}
	if s.ThrottleIntervalSeconds < 0 {
		s.ThrottleIntervalSeconds = d.ThrottleIntervalSeconds
	}
	if s.ResyncDelayMillis < 0 {
		s.ResyncDelayMillis = d.ResyncDelayMillis
	}
	if s.ConnectBackoffMillis <= 0 {
		s.ConnectBackoffMillis = d.ConnectBackoffMillis
	}
	if s.IdleDelayMillis < 0 {
		s.IdleDelayMillis = d.IdleDelayMillis
	}
	if c.Presence.FallbackImage == "" {
		c.Presence.FallbackImage = presence.DefaultFallbackImage
	}
}

var writeLock sync.Mutex

func (c *Config) WriteConfigFile(filepath string) error {
	if !writeLock.TryLock() {
		return nil // another write in progress
	}
	defer writeLock.Unlock()

	b, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, b, 0644)
}

func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Bus.CallTimeoutMillis) * time.Millisecond
}

func (c *Config) PresenceOptions() presence.Options {
	return presence.Options{
		LocalFilesOnly: c.Presence.LocalFilesOnly,
		UseArtURL:      c.Presence.UseArtURL,
		FallbackImage:  c.Presence.FallbackImage,
		PlayerImages:   c.Presence.PlayerImages,
	}
}

func (s SyncConfig) SignalTimeout() time.Duration {
	return time.Duration(s.SignalTimeoutSeconds) * time.Second
}

func (s SyncConfig) StaleInterval() time.Duration {
	return time.Duration(s.StaleIntervalSeconds) * time.Second
}

func (s SyncConfig) ThrottleInterval() time.Duration {
	return time.Duration(s.ThrottleIntervalSeconds) * time.Second
}

func (s SyncConfig) ResyncDelay() time.Duration {
	return time.Duration(s.ResyncDelayMillis) * time.Millisecond
}

func (s SyncConfig) ConnectBackoff() time.Duration {
	return time.Duration(s.ConnectBackoffMillis) * time.Millisecond
}

func (s SyncConfig) IdleDelay() time.Duration {
	return time.Duration(s.IdleDelayMillis) * time.Millisecond
}
