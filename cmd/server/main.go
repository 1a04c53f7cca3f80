package main

import (
	"os"

	"github.com/cyrilcaoyang/gopoe/internal/app"
)

// @title           gopoe API
// @version         1.0
// @description     Conversation history and relay backend for Poe bots.
// @BasePath        /api
func main() {
	os.Exit(app.Run())
}
