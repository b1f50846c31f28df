package main

import (
	"os"

	"github.com/ibchat/game-scout-sub001/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
