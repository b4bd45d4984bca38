package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/pigeonchat/pigeon/internal/daemon"
	"github.com/pigeonchat/pigeon/internal/mockapi"
)

func main() {
	// Optional .env for local overrides; absence is not an error.
	_ = godotenv.Load()

	addrFlag := flag.String("addr", "", "listen address (overrides PIGEOND_ADDR)")
	flag.Parse()

	addr := *addrFlag
	if addr == "" {
		addr = envOr("PIGEOND_ADDR", "127.0.0.1:8716")
	}

	secret := os.Getenv("PIGEOND_JWT_SECRET")
	if secret == "" {
		// A stable default keeps tokens valid across restarts in local use.
		secret = "pigeond-dev-secret"
	}

	replyDelay := mockapi.DefaultReplyDelay
	if raw := os.Getenv("PIGEOND_REPLY_DELAY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid PIGEOND_REPLY_DELAY %q: %v\n", raw, err)
			os.Exit(1)
		}
		replyDelay = d
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			Addr:       addr,
			JWTSecret:  []byte(secret),
			ReplyDelay: replyDelay,
		}),
	)

	app.Run()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
