// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cozodb is a thin CGO binding to the embedded CozoDB Datalog
// engine (cozo_c). Opening a database, running a script, importing and
// exporting relations are mechanical operations with no domain semantics
// of their own; the relation schema, batching, and chunk-level escaping
// live one layer up, in internal/store.
package cozodb

/*
#include <stdlib.h>
#include <string.h>
#include "cozo_c.h"

#cgo LDFLAGS: -L${SRCDIR}/../../lib -lcozo_c -lstdc++ -lm
#cgo windows LDFLAGS: -lbcrypt -lwsock32 -lws2_32 -lshlwapi -lrpcrt4
#cgo darwin LDFLAGS: -framework Security
*/
import "C"

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unsafe"
)

// DB is an open CozoDB database handle.
type DB struct {
	id     C.int32_t
	closed bool
}

// NamedRows is the result of a query: column headers plus data rows.
type NamedRows struct {
	Headers []string
	Rows    [][]any
}

// Open opens a CozoDB database with the given engine ("mem", "sqlite", or
// "rocksdb") and path (ignored for "mem"). Any engine string the linked
// cozo_c build accepts is passed straight through — this binding does not
// validate it, it relies on the C library's own error for an unsupported
// engine (see the doc comment on internal/store.Open for why).
func Open(engine, path string, options map[string]any) (DB, error) {
	cEngine := C.CString(engine)
	defer C.free(unsafe.Pointer(cEngine))

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	optionsJSON := "{}"
	if len(options) > 0 {
		optBytes, err := json.Marshal(options)
		if err != nil {
			return DB{}, fmt.Errorf("marshal options: %w", err)
		}
		optionsJSON = string(optBytes)
	}
	slog.Debug("cozodb: opening database", "engine", engine, "path", path)
	cOptions := C.CString(optionsJSON)
	defer C.free(unsafe.Pointer(cOptions))

	var dbID C.int32_t
	errPtr := C.cozo_open_db(cEngine, cPath, cOptions, &dbID)
	if errPtr != nil {
		errMsg := C.GoString(errPtr)
		C.cozo_free_str(errPtr)
		return DB{}, errors.New(errMsg)
	}

	return DB{id: dbID}, nil
}

// Run executes a write-capable CozoScript query.
func (db *DB) Run(script string, params map[string]any) (NamedRows, error) {
	return db.runQuery(script, params, false)
}

// RunReadOnly executes a CozoScript query with immutable_query=true.
func (db *DB) RunReadOnly(script string, params map[string]any) (NamedRows, error) {
	return db.runQuery(script, params, true)
}

func (db *DB) runQuery(script string, params map[string]any, immutable bool) (NamedRows, error) {
	if db.closed {
		return NamedRows{}, errors.New("cozodb: database is closed")
	}

	cScript := C.CString(script)
	defer C.free(unsafe.Pointer(cScript))

	paramsJSON := "{}"
	if len(params) > 0 {
		paramBytes, err := json.Marshal(params)
		if err != nil {
			return NamedRows{}, fmt.Errorf("marshal params: %w", err)
		}
		paramsJSON = string(paramBytes)
	}
	cParams := C.CString(paramsJSON)
	defer C.free(unsafe.Pointer(cParams))

	cImmutable := C.bool(immutable)
	resultPtr := C.cozo_run_query(db.id, cScript, cParams, cImmutable)
	if resultPtr == nil {
		return NamedRows{}, errors.New("cozodb: cozo_run_query returned null")
	}

	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)

	return parseResult(resultJSON)
}

// Close closes the database connection. It returns false if already closed.
func (db *DB) Close() bool {
	if db.closed {
		return false
	}
	db.closed = true
	return bool(C.cozo_close_db(db.id))
}

func parseResult(jsonStr string) (NamedRows, error) {
	var result struct {
		OK      bool     `json:"ok"`
		Headers []string `json:"headers"`
		Rows    [][]any  `json:"rows"`
		Message string   `json:"message"`
		Display string   `json:"display"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return NamedRows{}, fmt.Errorf("parse result: %w", err)
	}
	if !result.OK {
		errMsg := result.Message
		if errMsg == "" {
			errMsg = result.Display
		}
		if errMsg == "" {
			errMsg = "query failed"
		}
		return NamedRows{}, errors.New(errMsg)
	}
	return NamedRows{Headers: result.Headers, Rows: result.Rows}, nil
}

// Backup writes a full database backup to outPath.
func (db *DB) Backup(outPath string) error {
	if db.closed {
		return errors.New("cozodb: database is closed")
	}
	cPath := C.CString(outPath)
	defer C.free(unsafe.Pointer(cPath))

	resultPtr := C.cozo_backup(db.id, cPath)
	if resultPtr == nil {
		return errors.New("cozodb: cozo_backup returned null")
	}
	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)

	var result struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return fmt.Errorf("parse backup result: %w", err)
	}
	if !result.OK {
		return errors.New(result.Message)
	}
	return nil
}

// Restore replaces the database's contents from a backup file.
func (db *DB) Restore(inPath string) error {
	if db.closed {
		return errors.New("cozodb: database is closed")
	}
	cPath := C.CString(inPath)
	defer C.free(unsafe.Pointer(cPath))

	resultPtr := C.cozo_restore(db.id, cPath)
	if resultPtr == nil {
		return errors.New("cozodb: cozo_restore returned null")
	}
	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)

	var result struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return fmt.Errorf("parse restore result: %w", err)
	}
	if !result.OK {
		return errors.New(result.Message)
	}
	return nil
}

// ImportRelations bulk-loads relation data from a JSON payload. The store
// adapter does not call it.
func (db *DB) ImportRelations(jsonPayload string) error {
	if db.closed {
		return errors.New("cozodb: database is closed")
	}
	cPayload := C.CString(jsonPayload)
	defer C.free(unsafe.Pointer(cPayload))

	resultPtr := C.cozo_import_relations(db.id, cPayload)
	if resultPtr == nil {
		return errors.New("cozodb: cozo_import_relations returned null")
	}
	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)

	var result struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return fmt.Errorf("parse import result: %w", err)
	}
	if !result.OK {
		return errors.New(result.Message)
	}
	return nil
}

// ExportRelations dumps relation data matching jsonPayload's selector to a
// JSON string.
func (db *DB) ExportRelations(jsonPayload string) (string, error) {
	if db.closed {
		return "", errors.New("cozodb: database is closed")
	}
	cPayload := C.CString(jsonPayload)
	defer C.free(unsafe.Pointer(cPayload))

	resultPtr := C.cozo_export_relations(db.id, cPayload)
	if resultPtr == nil {
		return "", errors.New("cozodb: cozo_export_relations returned null")
	}
	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)
	return resultJSON, nil
}
