package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/pkg/config"
	pkgjwt "github.com/visitnote/visit-summary/pkg/jwt"
)

func main() {
	expiry := flag.Duration("expiry", 0, "token lifetime (defaults to JWT_ACCESS_EXPIRY)")
	host := flag.String("host", "http://localhost:8080", "base URL used in the example request")
	formID := flag.Int64("form", 1, "form id used in the example request")
	flag.Parse()

	log.Println("🚀 Minting test tokens...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ttl := cfg.JWT.AccessExpiry
	if *expiry > 0 {
		ttl = *expiry
	}
	jwtManager := pkgjwt.NewManager(cfg.JWT.AccessSecret, ttl)

	testUsers := []struct {
		Username string
		Role     entities.Role
	}{
		{Username: "nurse.alice", Role: entities.RoleFieldClinician},
		{Username: "nurse.bob", Role: entities.RoleFieldClinician},
		{Username: "qa.charlie", Role: entities.RoleQualityAdministrator},
	}

	for i, u := range testUsers {
		token, err := jwtManager.GenerateAccessToken(u.Username, u.Role.String())
		if err != nil {
			log.Printf("❌ Failed to generate access token for %s: %v", u.Username, err)
			continue
		}

		fmt.Printf("═══════════════════════════════════════════════════════════════\n")
		fmt.Printf("🟢 User %d: %s\n", i+1, u.Username)
		fmt.Printf("═══════════════════════════════════════════════════════════════\n")
		fmt.Printf("Role:         %s\n", u.Role)
		fmt.Printf("Expires:      %s\n", time.Now().Add(ttl).Format(time.RFC3339))
		fmt.Printf("\n📋 Access Token:\n%s\n", token)
		fmt.Printf("\n💡 Example:\n")
		fmt.Printf("curl -X POST -H 'Authorization: Bearer %s' %s/v1/forms/%d/summarize\n", token, *host, *formID)
		fmt.Printf("───────────────────────────────────────────────────────────────\n\n")
	}

	log.Println("✅ All test tokens created successfully!")
}
