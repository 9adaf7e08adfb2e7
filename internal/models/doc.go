// Package models defines the domain entities of the invoicing backend.
//
// # Entities
//
//   - User: an account; owns customers, invoices and payments
//   - Customer: a party invoices are addressed to, owned by one user
//   - Invoice: a bill to a customer; its total is derived from its items
//   - InvoiceItem: a single quantity × unit price line on an invoice
//   - Payment: money recorded against an invoice
//
// # Ownership
//
// Every entity except InvoiceItem carries the id of the user that owns it
// (UserID). Items inherit the owner of their invoice. A super-admin may act
// on records of any owner.
//
// # Money
//
// Amounts are decimal.Decimal values rounded to two places. Totals
// (InvoiceItem.Total, Invoice.TotalAmount) are always computed by the
// calculator package and never accepted from clients.
package models
