package storage

import "car-arbitrage/models"

// TabularWriter persists the row-and-column deal document.
type TabularWriter interface {
	WriteTabular(doc *models.TabularDocument) error
	Close() error
}

// StructuredWriter persists the structured deal document.
type StructuredWriter interface {
	WriteStructured(doc *models.StructuredDocument) error
	Close() error
}

// DealWriter persists the current deal snapshot to a database.
type DealWriter interface {
	Write(deals []*models.Deal) error
	Close() error
}
