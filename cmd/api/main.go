package main

import (
	"fmt"
	"os"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
