// Package model defines the data structures shared by the crawler, the
// journal and the report writers.
//
// This package contains the following main types:
//   - PageRecord: the outcome of processing one frontier entry
//   - RunReport: the result of one scrape run, including the aggregate text
//
// Models live in their own package so that crawler, database and report can
// all use them without import cycles.
package model
