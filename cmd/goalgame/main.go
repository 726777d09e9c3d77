package main

import (
	"github.com/joho/godotenv"
	"github.com/masonjarrr/goal-game/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()
	cli.Execute(version)
}
