package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/config"
	"github.com/tendant/clinic-idm/pkg/tokengenerator"
)

// tokengen mints or inspects tokens with the service's configured secrets.
// Useful for exercising downstream services without going through login.
func main() {
	subject := flag.String("subject", "", "User ID (UUID) the token is issued for")
	tenant := flag.String("tenant", "", "Tenant (organization) ID")
	role := flag.String("role", string(account.RoleOwner), "Role claim: OWNER or DOCTOR")
	tokenType := flag.String("type", tokengenerator.ACCESS_TOKEN_NAME, "Token type: access or refresh")
	expiry := flag.Duration("expiry", 0, "Override the configured expiry (e.g. 30m, 24h)")
	inspect := flag.String("inspect", "", "Parse and print an existing token instead of minting one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var generator *tokengenerator.JwtTokenGenerator
	ttl := *expiry
	switch *tokenType {
	case tokengenerator.ACCESS_TOKEN_NAME:
		generator = tokengenerator.NewJwtTokenGenerator(cfg.Jwt.AccessSecret, cfg.Jwt.Issuer, cfg.Jwt.Audience, tokengenerator.ACCESS_TOKEN_NAME)
		if ttl == 0 {
			ttl = cfg.Jwt.AccessTTL()
		}
	case tokengenerator.REFRESH_TOKEN_NAME:
		generator = tokengenerator.NewJwtTokenGenerator(cfg.Jwt.RefreshSecret, cfg.Jwt.Issuer, cfg.Jwt.Audience, tokengenerator.REFRESH_TOKEN_NAME)
		if ttl == 0 {
			ttl = cfg.Jwt.RefreshTTL()
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown token type: %s\n", *tokenType)
		os.Exit(1)
	}

	if *inspect != "" {
		claims, err := generator.ParseToken(*inspect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(claims, "", "  ")
		fmt.Println(string(out))
		return
	}

	userID, err := uuid.Parse(*subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -subject must be a UUID: %v\n", err)
		os.Exit(1)
	}
	tenantID, err := uuid.Parse(*tenant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -tenant must be a UUID: %v\n", err)
		os.Exit(1)
	}
	parsedRole, err := account.ParseRole(*role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	token, expiresAt, err := generator.GenerateToken(tokengenerator.SessionClaims{
		UserID:   userID,
		Role:     string(parsedRole),
		TenantID: tenantID,
	}, ttl)
	if err != nil {
		slog.Error("Failed to generate token", "err", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "Expires: %s\n", expiresAt.Format(time.RFC3339))
}
