package main

import (
	"log"

	"github.com/joho/godotenv"

	"planeidler-sim/internal/dashboard"
)

func main() {
	_ = godotenv.Load()
	if err := dashboard.Render("build"); err != nil {
		log.Fatal(err)
	}
}
