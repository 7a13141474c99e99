// Package scraper fetches observatory operations documents and splits them
// into rows of text cells.
//
// Documents are fetched over HTTP with retries, or read from disk when the
// location has no URL scheme. A document that does not exist is reported as
// missing rather than as an error. Text tables are split on runs of
// whitespace; hypertext tables are extracted with goquery.
package scraper
