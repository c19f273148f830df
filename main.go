//
// postsctl
// ========
// A command line client for a small posts REST API. The API base URL and the
// access token are kept in a local store between runs.
//
// Point it at an API and list the posts:
// --------------------------------------
// $ postsctl -url http://localhost:3333 load
// ## First post
// This is the first post.
// [delete 1]
//
// Afterwards the saved URL is used, running without a command lists again:
// $ postsctl
//
// Accounts and posts:
// -------------------
// $ postsctl register -username peter -password secret
// $ postsctl login -username peter -password secret
// $ postsctl add -title "Third post" -content "Hello"
// $ postsctl update -id 3 -title "Third post" -content "Hello again"
// $ postsctl search -title third
// $ postsctl delete -id 3
//
// A local mock of the API:
// ------------------------
// $ postsctl mock-server -addr :3333
// $ postsctl mock-server -routes
//
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/SergeyParamoshkin/postsclient/internal/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const ServiceName = "postsctl"

// nolint
func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer logger.Sync() // flushes buffer, if any

	a := App{
		sugarLogger: logger.Sugar(),
		config:      cfg,
		out:         os.Stdout,
	}

	if err := a.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
