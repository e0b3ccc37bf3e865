// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/docopt/docopt-go"

	"github.com/ergochat/ircrelay/irc"
	"github.com/ergochat/ircrelay/irc/logger"
)

// set via linker flags, either by make or by goreleaser:
var commit = ""  // git hash
var version = "" // tagged version

func main() {
	irc.SetVersionString(version, commit)
	usage := `ircrelay.
Usage:
	ircrelay run [--conf <filename>] [--quiet] [--smoke]
	ircrelay checkconfig [--conf <filename>]
	ircrelay -h | --help
	ircrelay --version
Options:
	--conf <filename>  Configuration file to use [default: ircrelay.yaml].
	--quiet            Don't show startup/shutdown lines.
	--smoke            Set up the server, then exit.
	-h --help          Show this screen.
	--version          Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, irc.Ver)

	configfile := arguments["--conf"].(string)
	config, err := irc.LoadConfig(configfile)
	if err != nil {
		log.Fatal("Config file did not load successfully: ", err.Error())
	}

	if arguments["checkconfig"].(bool) {
		fmt.Printf("%s: configuration is valid\n", configfile)
		return
	}

	logman, err := logger.NewManager(config.Logging)
	if err != nil {
		log.Fatal("Logger did not load successfully:", err.Error())
	}
	defer logman.Close()

	if arguments["run"].(bool) {
		quiet := arguments["--quiet"].(bool)
		if !quiet {
			logman.Info("server", fmt.Sprintf("%s starting", irc.Ver))
		}

		server, err := irc.NewServer(config, logman)
		if err != nil {
			logman.Error("server", fmt.Sprintf("Could not load server: %s", err.Error()))
			logman.Close()
			os.Exit(1)
		}
		if arguments["--smoke"].(bool) {
			server.Shutdown()
			return
		}
		server.Run()
		if !quiet {
			logman.Info("server", fmt.Sprintf("%s stopped", irc.Ver))
		}
	}
}
