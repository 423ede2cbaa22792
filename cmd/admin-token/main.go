// Command admin-token mints a bearer token for the admin surface.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/revival/clans/pkg/jwt"
)

func main() {
	secret := flag.String("secret", os.Getenv("ADMIN_TOKEN_SECRET"), "Shared signing secret (defaults to ADMIN_TOKEN_SECRET)")
	subject := flag.String("subject", "admin-dev", "Token subject")
	issuer := flag.String("issuer", "clans", "Token issuer")
	lifetime := flag.Duration("lifetime", 7*24*time.Hour, "Token lifetime")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "Error: no signing secret; pass -secret or set ADMIN_TOKEN_SECRET")
		os.Exit(1)
	}

	svc := jwt.NewService([]byte(*secret), *issuer, *lifetime)
	token, err := svc.Sign(*subject, "admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int((*lifetime).Seconds()),
			"subject":      *subject,
			"role":         "admin",
		})
		return
	}

	fmt.Println(token)
}
