// Package dataprocessing converts experiment-plan tables into linked
// archive records for a sample batch.
//
// # Architecture
//
// The package has two components:
//
// 1. Parser: walks the plan's column groups, deduplicates substrates and
// process rows, and resolves which samples share each process instance.
//
// 2. Mappers: one mapping function per process type, reading named
// columns from a row into a unit-converted domain record.
//
// # Usage
//
//	parser := dataprocessing.NewParser(logger)
//	result, err := parser.ParseFile("KIT_2024_batch17.xlsx", uploadID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range result.Records {
//	    ref, err := store.Write(rec.Key, rec.Data)
//	    ...
//	}
package dataprocessing
