// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// ReindexTask represents a request to rebuild a document's search index
// entries from its authoritative record.
type ReindexTask struct {
	DocumentID string `json:"document_id"`
}
