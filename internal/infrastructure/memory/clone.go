package memory

import "github.com/jhoicas/homecare-fulfillment/internal/domain/entity"

func cloneOrder(o entity.ApprovedOrder) entity.ApprovedOrder {
	o.Items = append([]entity.ApprovedOrderItem(nil), o.Items...)
	return o
}

func cloneKit(k entity.KitTemplate) entity.KitTemplate {
	k.Items = append([]entity.KitTemplateItem(nil), k.Items...)
	return k
}

func clonePickList(p entity.PickList) entity.PickList {
	p.Items = append([]entity.PickListItem(nil), p.Items...)
	return p
}

func cloneAuthorization(a entity.Authorization) entity.Authorization {
	a.Requirements = append([]entity.AuthorizationRequirement(nil), a.Requirements...)
	return a
}

func cloneInvoice(inv entity.Invoice) entity.Invoice {
	inv.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	inv.DebitNotes = append([]entity.DebitNote(nil), inv.DebitNotes...)
	inv.Payments = append([]entity.Payment(nil), inv.Payments...)
	return inv
}
