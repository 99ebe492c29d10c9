package main

import (
	"fmt"

	"github.com/temirov/strut/internal/cli"
)

// main is the entry point for the strut command.
func main() {
	loggerInstance, loggerInitializationError := cli.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(cli.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(cli.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
