// Package events defines the messages exchanged with sibling services when
// the cleaner runs in event-driven mode.
package events

import "time"

// EventHeader contains metadata common to all events.
type EventHeader struct {
	Timestamp  time.Time `json:"Timestamp"`
	WorkflowID string    `json:"WorkflowID"`
	UserID     string    `json:"UserID"`
	TenantID   string    `json:"TenantID"`
	EventID    string    `json:"EventID"`
}

// PDFCreatedEvent is triggered when a PDF document lands in the object store
// and is ready for cleaning.
type PDFCreatedEvent struct {
	Header    EventHeader `json:"Header"`
	PDFKey    string      `json:"PDFKey"`
	PageCount int         `json:"PageCount"`
}

// TextCleanedEvent is triggered after a document's cleaned text has been
// written to the text object store.
type TextCleanedEvent struct {
	Header  EventHeader `json:"Header"`
	PDFKey  string      `json:"PDFKey"`
	TextKey string      `json:"TextKey"`
}
