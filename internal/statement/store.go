package statement

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const ledgerBucketName = "ledger"

// LedgerStore defines the interface for ledger persistence. Records are
// grouped by document ID; ReplaceDocument is the rebuild mode that makes
// repeated runs over the same input idempotent.
type LedgerStore interface {
	// ReplaceDocument replaces every record held for a document
	ReplaceDocument(documentID string, records []TransactionRecord) error

	// AppendDocument appends records to a document without removing
	// previously stored ones
	AppendDocument(documentID string, records []TransactionRecord) error

	// Document returns the records held for a document
	Document(documentID string) ([]TransactionRecord, error)

	// AllRecords returns every record in the ledger, ordered by document ID,
	// then page number, preserving intra-page order
	AllRecords() ([]TransactionRecord, error)

	// Close closes the store
	Close() error
}

// BoltLedger implements LedgerStore using BoltDB. Each document's records are
// stored as one JSON value keyed by document ID.
type BoltLedger struct {
	db *bbolt.DB
}

// NewBoltLedger opens (or creates) a ledger database at path.
func NewBoltLedger(path string) (*BoltLedger, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger bucket: %w", err)
	}

	return &BoltLedger{db: db}, nil
}

// ReplaceDocument replaces every record held for a document.
func (b *BoltLedger) ReplaceDocument(documentID string, records []TransactionRecord) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucketName))
		if len(records) == 0 {
			return bucket.Delete([]byte(documentID))
		}
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshaling records: %w", err)
		}
		return bucket.Put([]byte(documentID), data)
	})
}

// AppendDocument appends records to whatever the document already holds.
func (b *BoltLedger) AppendDocument(documentID string, records []TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucketName))

		existing := make([]TransactionRecord, 0, len(records))
		if data := bucket.Get([]byte(documentID)); data != nil {
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("unmarshaling records: %w", err)
			}
		}

		data, err := json.Marshal(append(existing, records...))
		if err != nil {
			return fmt.Errorf("marshaling records: %w", err)
		}
		return bucket.Put([]byte(documentID), data)
	})
}

// Document returns the records held for a document.
func (b *BoltLedger) Document(documentID string) ([]TransactionRecord, error) {
	records := make([]TransactionRecord, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucketName))
		data := bucket.Get([]byte(documentID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &records)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AllRecords returns the full ledger in deterministic order.
func (b *BoltLedger) AllRecords() ([]TransactionRecord, error) {
	records := make([]TransactionRecord, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var docRecords []TransactionRecord
			if err := json.Unmarshal(v, &docRecords); err != nil {
				return fmt.Errorf("unmarshaling records for %s: %w", k, err)
			}
			records = append(records, docRecords...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Bucket iteration is already sorted by document ID; the stable sort
	// fixes page order within appended documents without disturbing line
	// order within a page.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Page.Less(records[j].Page)
	})

	return records, nil
}

// Close closes the database.
func (b *BoltLedger) Close() error {
	return b.db.Close()
}
