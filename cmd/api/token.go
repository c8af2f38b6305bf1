package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
	"github.com/jhoicas/homecare-fulfillment/pkg/jwt"
)

// tokenCmd firma un token con JWT_SECRET. La emisión real la hace el proveedor de identidad;
// este comando sirve para entornos locales y el modo memory.
func tokenCmd() *cobra.Command {
	var userID, tenantID, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token de acceso para desarrollo",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch role {
			case entity.RoleAdmin, entity.RoleBodeguero, entity.RoleCoordinador, entity.RoleFacturador:
			default:
				return fmt.Errorf("token: rol desconocido %q", role)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tokens, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
			if err != nil {
				return err
			}
			tok, err := tokens.Sign(jwt.Identity{UserID: userID, TenantID: tenantID, Role: role})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "demo-admin", "user_id del token")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant_id del token")
	cmd.Flags().StringVar(&role, "role", entity.RoleAdmin, "admin | bodeguero | coordinador | facturador")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
