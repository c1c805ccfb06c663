// Command devtoken mints an access token for the admin API, signed with the
// configured JWT_SIGNING_KEY.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eventfootprint/eventfootprint/internal/auth"
	"github.com/eventfootprint/eventfootprint/internal/config"
)

func main() {
	subject := flag.String("sub", "dev@localhost", "token subject")
	role := flag.String("role", auth.RoleAdmin, "role claim: admin or viewer")
	ttl := flag.Duration("ttl", auth.DefaultTokenExpiry, "token lifetime")
	flag.Parse()

	if err := run(*subject, *role, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(subject, role string, ttl time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWT.DevKey {
		fmt.Fprintln(os.Stderr, "devtoken: JWT_SIGNING_KEY not set, signing with the development key")
	}

	tokens := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
	})

	token, expiresAt, err := tokens.GenerateAccessToken(subject, role, ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
