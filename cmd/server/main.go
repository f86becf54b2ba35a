package main

import (
	"github.com/lumenintel/orrery/backend/internal/server"
	"github.com/lumenintel/orrery/backend/internal/util"
	"github.com/lumenintel/orrery/backend/pkg/logger"
	"github.com/lumenintel/orrery/backend/pkg/logger/console"

	_ "github.com/lib/pq"
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
