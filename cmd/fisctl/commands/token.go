package commands

import (
	"fmt"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/auth"

	"github.com/spf13/cobra"
)

var (
	// Token flags
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development JWT signed with auth.jwt_secret",
	Long: `Mint a bearer token for local testing of the /api routes.

Examples:
  fisctl token --user user_123
  fisctl token --user user_123 --role super-admin --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		token, err := mintToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, tokenUser, tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User id placed in the sub claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleUser), "Role: user, admin or super-admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func mintToken(secret, issuer, user, role string, ttl time.Duration) (string, error) {
	r := auth.Role(role)
	switch r {
	case auth.RoleUser, auth.RoleAdmin, auth.RoleSuperAdmin:
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
	if user == "" {
		return "", fmt.Errorf("--user is required")
	}
	return auth.NewIssuer(secret, issuer, ttl).Generate(user, r)
}
