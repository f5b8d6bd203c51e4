// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"docnexus/internal/apperr"
	"docnexus/internal/docgen"
	"docnexus/internal/models"
)

// createOrderRequest creates an order with its line items. Unit prices are
// resolved from the product's pricing tiers; a supplied unit_price overrides.
type createOrderRequest struct {
	ExternalOrderID string             `json:"external_order_id"`
	CustomerName    string             `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string             `json:"customer_email" validate:"omitempty,email"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderItemRequest struct {
	ProductSKU string   `json:"product_sku" validate:"required"`
	Quantity   int      `json:"quantity" validate:"required,gte=1"`
	UnitPrice  *float64 `json:"unit_price" validate:"omitempty,gte=0"`
}

// OrderCreate handles POST /api/orders.
func (a *API) OrderCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order := &models.Order{
		ExternalOrderID: req.ExternalOrderID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
	}
	for _, item := range req.Items {
		unit, err := a.resolveUnitPrice(item)
		if err != nil {
			writeError(w, err)
			return
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductSKU: item.ProductSKU,
			Quantity:   item.Quantity,
			UnitPrice:  unit,
		})
	}

	created, err := a.orders.Create(order)
	if err != nil {
		writeError(w, err)
		return
	}
	// Stock was decremented; drop stale cached quantities.
	if a.inventory != nil {
		for _, item := range created.Items {
			a.inventory.Invalidate(r.Context(), item.ProductSKU)
		}
	}
	writeJSON(w, http.StatusCreated, created)
}

// resolveUnitPrice applies the product's tiered pricing unless the caller
// pinned an explicit unit price.
func (a *API) resolveUnitPrice(item orderItemRequest) (float64, error) {
	if item.UnitPrice != nil {
		return *item.UnitPrice, nil
	}
	p, err := a.products.FindBySKU(item.ProductSKU)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, apperr.Validation("unknown product %q", item.ProductSKU)
	}
	if p.Inventory != nil {
		return p.Inventory.UnitPriceFor(item.Quantity, p.BasePrice), nil
	}
	return p.BasePrice, nil
}

// OrderGet handles GET /api/orders/{orderID}.
func (a *API) OrderGet(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := a.orders.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if order == nil {
		writeError(w, apperr.NotFound("order %s", id))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// OrderList handles GET /api/orders.
func (a *API) OrderList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	orders, err := a.orders.List(limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// updateOrderStatusRequest moves an order through its lifecycle.
type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// OrderUpdateStatus handles PUT /api/orders/{orderID}/status.
func (a *API) OrderUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateOrderStatusRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := a.orders.UpdateStatus(id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	order, err := a.orders.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// orderInvoiceRequest renders an invoice document for an order.
type orderInvoiceRequest struct {
	TemplateName string `json:"template_name" validate:"required"`
	Draft        bool   `json:"draft"`
}

// OrderInvoice handles POST /api/orders/{orderID}/invoice. It binds the
// order's data into an invoice template and runs the render pipeline with
// a verification code.
func (a *API) OrderInvoice(w http.ResponseWriter, r *http.Request) {
	if a.blobs == nil {
		writeError(w, apperr.External("object storage", errNotConfigured))
		return
	}
	id, err := urlUUID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req orderInvoiceRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := a.orders.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if order == nil {
		writeError(w, apperr.NotFound("order %s", id))
		return
	}

	tpl, err := a.templates.FindByName(req.TemplateName)
	if err != nil {
		writeError(w, err)
		return
	}
	if tpl == nil {
		writeError(w, apperr.NotFound("template %q", req.TemplateName))
		return
	}
	if tpl.DocumentType != models.DocumentTypeInvoice {
		writeError(w, apperr.Validation("template %q is a %s template, not an invoice", req.TemplateName, tpl.DocumentType))
		return
	}

	result, err := a.pipeline.Generate(r.Context(), docgen.Request{
		TemplateID:          tpl.ID,
		Bindings:            orderBindings(order),
		Draft:               req.Draft,
		IncludeVerification: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	key := fmt.Sprintf("documents/%s/%s.pdf", tpl.ID, order.ID)
	if err := a.blobs.Upload(r.Context(), a.blobs.DocumentsBucket(), key, "application/pdf", result.PDF); err != nil {
		writeError(w, apperr.External("document upload", err))
		return
	}

	doc, err := a.documents.Create(&models.GeneratedDocument{
		TemplateID:      tpl.ID,
		VersionSequence: result.VersionSequence,
		Bindings:        map[string]string{"order_id": order.ID.String()},
		S3Key:           key,
		SizeBytes:       int64(len(result.PDF)),
		Checksum:        result.Checksum,
		CreatedBy:       requestUser(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		Document:        doc,
		VersionSequence: result.VersionSequence,
		Unresolved:      result.Unresolved,
		MissingRequired: result.MissingRequired,
		EmbeddedAssets:  result.EmbeddedAssets,
		VerificationID:  result.VerificationID,
	})
}

// orderBindings maps an order onto the conventional invoice template
// variables. Line items render as pre-built table rows bound to
// order_items; item order follows the stored order so output is stable.
func orderBindings(o *models.Order) map[string]any {
	var rows strings.Builder
	for _, item := range o.Items {
		fmt.Fprintf(&rows,
			"<tr><td>%s</td><td>%d</td><td>$%.2f</td><td>$%.2f</td></tr>",
			html.EscapeString(item.ProductSKU), item.Quantity, item.UnitPrice, item.Subtotal(),
		)
	}
	return map[string]any{
		"order_id":       o.ID.String(),
		"order_number":   o.ExternalOrderID,
		"customer_name":  o.CustomerName,
		"customer_email": o.CustomerEmail,
		"order_date":     o.CreatedAt,
		"order_status":   o.Status,
		"order_items":    rows.String(),
		"total":          o.TotalAmount,
	}
}
