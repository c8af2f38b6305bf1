package repository

// Stores agrupa los repositorios atados a una misma transacción.
type Stores struct {
	Warehouses     WarehouseRepository
	Products       ProductRepository
	Patients       PatientRepository
	Payers         PayerRepository
	Movements      StockMovementRepository
	Stock          StockRepository
	Orders         OrderRepository
	Kits           KitRepository
	PickLists      PickListRepository
	Incidents      IncidentRepository
	Deliveries     DeliveryRepository
	Authorizations AuthorizationRepository
	BillingRules   BillingRuleRepository
	Invoices       InvoiceRepository
}
