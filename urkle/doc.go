// Package urkle encodes and decodes the Urkle v1 frontier snapshot: the
// 544-byte builder-resume state that lives in every massif blob's
// FrontierState region.
//
// The engine treats frontier contents as opaque — it reserves, copies,
// and round-trips the 544 bytes, but it never interprets frame or
// pending-ref fields itself. Those belong to the indexing structure
// built on top of the leaf table, which is out of scope here; this
// package exists only so the FrontierState region has a concrete,
// bit-exact size and a safe zero-value/"uninitialized" encoding.
package urkle
