package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const EnvPrefix = "POSTSCTL_"

// Config is the command line of one invocation. Every flag defaults to the
// environment variable POSTSCTL_<FLAG>.
type Config struct {
	Command string

	Store     string
	StorePath string
	Timeout   time.Duration
	Debug     bool

	// Form fields.
	BaseURL  string
	Title    string
	Content  string
	ID       int64
	Username string
	Password string

	// mock-server only.
	Addr      string
	DiagAddr  string
	Routes    bool
	JWTSecret string
}

// Load parses args. Flags may appear before and after the command name.
func Load(args []string, output io.Writer) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("postsctl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "usage: postsctl [flags] [init|load|add|delete|update|search|register|login|config|mock-server] [flags]\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.Store, "store", getEnv("store", "file"), "local store driver: file, sqlite or badger")
	fs.StringVar(&cfg.StorePath, "store_path", getEnv("store_path", ""), "local store location (default under ~/.postsclient)")
	fs.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("timeout", 30*time.Second), "overall timeout of a command, 0 for none")
	fs.BoolVar(&cfg.Debug, "debug", getEnvBool("debug", false), "development logging")

	fs.StringVar(&cfg.BaseURL, "url", getEnv("url", ""), "API base URL (default: the saved one)")
	fs.StringVar(&cfg.Title, "title", "", "post title")
	fs.StringVar(&cfg.Content, "content", "", "post content")
	fs.Int64Var(&cfg.ID, "id", 0, "post id")
	fs.StringVar(&cfg.Username, "username", getEnv("username", ""), "account username")
	fs.StringVar(&cfg.Password, "password", getEnv("password", ""), "account password")

	fs.StringVar(&cfg.Addr, "addr", getEnv("addr", ":3333"), "mock-server listen address")
	fs.StringVar(&cfg.DiagAddr, "diag_addr", getEnv("diag_addr", ":9999"), "mock-server metrics address")
	fs.BoolVar(&cfg.Routes, "routes", getEnvBool("routes", false), "print mock-server route docs and exit")
	fs.StringVar(&cfg.JWTSecret, "jwt_secret", getEnv("jwt_secret", ""), "mock-server token signing secret")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if fs.NArg() > 0 {
		cfg.Command = fs.Arg(0)
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return cfg, err
		}
		if fs.NArg() > 0 {
			return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		}
	}

	return cfg, nil
}

func envKey(name string) string {
	return EnvPrefix + strings.ToUpper(name)
}

func getEnv(name, fallback string) string {
	if v, ok := os.LookupEnv(envKey(name)); ok {
		return v
	}

	return fallback
}

func getEnvBool(name string, fallback bool) bool {
	if b, err := strconv.ParseBool(getEnv(name, "")); err == nil {
		return b
	}

	return fallback
}

func getEnvDuration(name string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(name, "")); err == nil {
		return d
	}

	return fallback
}
