package res

const (
	AppName          = "mpris-rpc"
	AppVersion       = "0.3.0"
	AppVersionTag    = "v" + AppVersion
	LatestReleaseURL = "https://github.com/dweymouth/mpris-rpc/releases/latest"

	// Discord application that owns the presence assets (logo, playing, paused, player icons).
	DiscordAppID = "831641858643460106"
)
