package entity

// Roles válidos en el token.
const (
	RoleAdmin       = "admin"
	RoleBodeguero   = "bodeguero"
	RoleCoordinador = "coordinador"
	RoleFacturador  = "facturador"
)

// Actor es la identidad que ejecuta una operación (viene del token, no se consulta la DB).
type Actor struct {
	UserID   string
	TenantID string
	Role     string
}
