package main

import (
	"testing"

	"tmas-assistant-backend/internal/config"

	"github.com/hibiken/asynq"
)

func TestRedisConnOptBareAddr(t *testing.T) {
	opt, err := redisConnOpt(&config.Config{
		RedisURL:      "localhost:6379",
		RedisPassword: "pw",
		RedisDB:       2,
	})
	if err != nil {
		t.Fatal(err)
	}
	client, ok := opt.(asynq.RedisClientOpt)
	if !ok {
		t.Fatalf("got %T, want asynq.RedisClientOpt", opt)
	}
	if client.Addr != "localhost:6379" || client.Password != "pw" || client.DB != 2 {
		t.Errorf("got %+v, want addr/password/db from config", client)
	}
}

func TestRedisConnOptURL(t *testing.T) {
	opt, err := redisConnOpt(&config.Config{RedisURL: "redis://:secret@example.com:6380/3"})
	if err != nil {
		t.Fatal(err)
	}
	client, ok := opt.(asynq.RedisClientOpt)
	if !ok {
		t.Fatalf("got %T, want asynq.RedisClientOpt", opt)
	}
	if client.Addr != "example.com:6380" || client.Password != "secret" || client.DB != 3 {
		t.Errorf("got %+v, want fields parsed from the URL", client)
	}
}

func TestRedisConnOptBadURL(t *testing.T) {
	if _, err := redisConnOpt(&config.Config{RedisURL: "redis://bad url/notanumber"}); err == nil {
		t.Error("malformed URL accepted")
	}
}
