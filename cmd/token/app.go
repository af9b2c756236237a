// Package token implements the `token` CLI mode: a dev helper that mints a
// short-lived admin API bearer token without standing up the whole
// simulator.
package token

import (
	"fmt"
	"time"

	"dispatch-sim/internal/general/config"
	"dispatch-sim/internal/general/jwt"
)

// Run mints an operator or viewer token and prints it alongside its claims.
func Run(cfgPath, role string, ttl time.Duration) error {
	var secret string
	if cfgPath != "" {
		cfg, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		secret = cfg.JWT.SecretKey
	} else {
		secret = config.Default().JWT.SecretKey
	}

	var r jwt.Role
	switch role {
	case "operator", "OPERATOR":
		r = jwt.RoleOperator
	case "viewer", "VIEWER":
		r = jwt.RoleViewer
	default:
		return fmt.Errorf("unknown role %q: want operator or viewer", role)
	}

	mgr := jwt.NewManager(secret, ttl)
	signed, claims, err := mgr.IssueOperatorToken("dev-cli", r)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Println("TOKEN:")
	fmt.Println(signed)
	fmt.Println("\nCLAIMS:")
	fmt.Printf("  sub:  %s\n", claims.Subject)
	fmt.Printf("  role: %s\n", claims.Role)
	fmt.Printf("  iat:  %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
	fmt.Printf("  exp:  %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	return nil
}
