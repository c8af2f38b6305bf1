package entity

// Prefijos de numeración.
const (
	PrefixDelivery = "DEL"
	PrefixInvoice  = "FAC"
)

// Sequence es el contador de numeración por tenant, prefijo y período YYYYMM.
// Los valores nunca se reutilizan aunque la operación que los pidió falle.
type Sequence struct {
	TenantID  string
	Prefix    string
	Period    string
	LastValue int64
}
