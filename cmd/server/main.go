package main

import (
	"saladgen/internal/server"
	"saladgen/internal/util"
	"saladgen/pkg/logger"
	"saladgen/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
