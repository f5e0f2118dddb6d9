// Command devtoken mints a bearer token signed with the configured key, for
// exercising the API locally without an identity provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	jwttoken "homestay/internal/jwt_token"
	"homestay/internal/platform/config"
	"homestay/pkg/domain"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file read before the environment")
	role := flag.String("role", string(domain.RoleOwner), "actor role")
	district := flag.String("district", "", "district for officer roles")
	userID := flag.String("user", "", "user id; a random one when empty")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*envFile, *role, *district, *userID, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile, role, district, rawUserID string, ttl time.Duration) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if rawUserID == "" {
		rawUserID = uuid.NewString()
	}
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return err
	}
	actor := domain.Actor{ID: userID, Role: domain.Role(role), District: district}
	if !actor.Role.IsValid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if actor.Role.IsOfficer() && district == "" {
		return fmt.Errorf("role %s requires -district", role)
	}

	token, err := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience).
		GenerateAccessToken(actor, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
