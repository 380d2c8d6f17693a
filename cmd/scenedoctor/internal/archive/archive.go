// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package archive persists scan and fix reports in a local badger store
// so past runs can be reviewed after the session ends.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/rules"
)

// ErrNotFound is returned when no record matches the requested run ID.
var ErrNotFound = errors.New("archive: record not found")

// Record kinds.
const (
	KindScan = "scan"
	KindFix  = "fix"
)

// keyPrefix orders records by creation time for range scans.
const keyPrefix = "report/"

// Record is one archived run.
type Record struct {
	RunID     string          `json:"run_id"`
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Scope     string          `json:"scope"`
	Findings  []rules.Finding `json:"findings,omitempty"`
	Counts    map[string]int  `json:"counts,omitempty"`
	Errors    int             `json:"errors"`
	Warnings  int             `json:"warnings"`
}

// Archive is a badger-backed report history.
type Archive struct {
	db  *badger.DB
	log *logging.Logger
}

// Open opens (or creates) the archive at dir.
func Open(dir string, log *logging.Logger) (*Archive, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening archive at %s: %w", dir, err)
	}
	return &Archive{db: db, log: log}, nil
}

// Close releases the underlying store.
func (a *Archive) Close() error {
	return a.db.Close()
}

func recordKey(rec Record) []byte {
	// Nanosecond timestamp first so iteration order is creation order;
	// the run ID disambiguates same-instant writes.
	return []byte(fmt.Sprintf("%s%020d/%s", keyPrefix, rec.Timestamp.UnixNano(), rec.RunID))
}

// Put stores one record. A zero timestamp is stamped with the current
// time.
func (a *Archive) Put(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.RunID, err)
	}
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec), value)
	})
	if err != nil {
		return fmt.Errorf("storing record %s: %w", rec.RunID, err)
	}
	a.log.Debug("archived report", "run_id", rec.RunID, "kind", rec.Kind)
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns
// everything.
func (a *Archive) List(limit int) ([]Record, error) {
	var records []Record
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts past the last prefixed key.
		seek := append([]byte(keyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

// Get returns the record with the given run ID.
func (a *Archive) Get(runID string) (Record, error) {
	var found Record
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(keyPrefix)); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			item := it.Item()
			var rec Record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			if rec.RunID == runID {
				found = rec
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return Record{}, err
	}
	return found, nil
}
