// Package save hands finished documents to a destination store.
//
// StagedSink first writes the bytes under a transient reference in a staging
// store, copies them from there to the destination under the requested
// filename and MIME type, and releases the transient reference after a
// bounded delay. The delay gives concurrent readers of the reference time to
// finish; Close releases everything at once.
package save
