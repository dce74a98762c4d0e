package backend

import (
	"flag"
)

var (
	FlagConfig    = flag.String("config", "", "path to the config file (default: config.toml in the user config dir)")
	FlagLocalOnly = flag.Bool("local-only", false, "only announce tracks played from local files")
	FlagVerbose   = flag.Bool("verbose", false, "log every presence update")
	FlagVersion   = flag.Bool("version", false, "print app version and exit")
	FlagHelp      = flag.Bool("help", false, "print command line options and exit")
)
