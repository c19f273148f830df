// client_integration_test.go
//go:build integration

package client

import (
	"context"
	"os"
	"testing"
)

func integrationConfig() Config {
	addr := os.Getenv("POSTSCTL_TEST_URL")
	if addr == "" {
		addr = "http://localhost:3333"
	}

	return Config{BaseURL: addr}
}

func TestPing(t *testing.T) {
	var c Client
	if s, err := c.Ping(context.Background(), integrationConfig()); err != nil || s != "pong" {
		t.Fail()
	}
}

func TestListPostsLive(t *testing.T) {
	var c Client
	if _, err := c.ListPosts(context.Background(), integrationConfig()); err != nil {
		t.Fatal(err)
	}
}
