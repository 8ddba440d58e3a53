package main

import (
	"log"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/marathon/cmd/migrate"
	"github.com/yusufsyaifudin/marathon/cmd/start"
	"github.com/yusufsyaifudin/marathon/cmd/worker"
)

func main() {
	const appName, appVersion = "marathon", "1.0.0"

	startCmd := start.NewCmd()

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"":        startCmd, // default command if no subcommand defined
		"start":   startCmd,
		"worker":  worker.NewCmd(),
		"migrate": migrate.NewCmd(),
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}
