package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/noah-isme/rdic-api/internal/models"
	"github.com/noah-isme/rdic-api/internal/service"
	"github.com/noah-isme/rdic-api/pkg/config"
)

// rdic-token signs a bearer token with the server's JWT settings so the API
// can be exercised locally without the identity provider.
func main() {
	flags := pflag.NewFlagSet("rdic-token", pflag.ExitOnError)
	userID := flags.String("user", "", "user id placed in the token")
	role := flags.String("role", string(models.RoleTeacher), "CENTRAL, COORDINATOR or TEACHER")
	scopes := flags.StringSlice("scope", nil, "scope ids held by the user (repeatable or comma separated)")
	name := flags.String("name", "", "display name")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokens := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})
	actor := models.Actor{
		UserID: *userID,
		Role:   models.UserRole(strings.ToUpper(*role)),
		Scopes: *scopes,
	}
	token, expiresAt, err := tokens.IssueToken(actor, *name)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
}
