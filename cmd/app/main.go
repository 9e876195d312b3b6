package main

import (
	"fmt"
	"os"
)

// @title Reservas Municipales API
// @version 1.0
// @description API for booking municipal venues, courses and payments.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
