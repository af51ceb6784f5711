// Package chunksync copies chunks between content-addressed chunk stores.
//
// A chunk store holds the deduplicated pieces of a backup,
// each one a file named by the sha256 digest of its content.
// To keep directories small,
// chunks are spread over up to 65536 shard directories
// named by the first four hex digits of the digest:
//
//	<root>/<first 4 hex digits>/<all 64 hex digits>
//
// A backed-up file is described by a chunk index,
// which lists the digests of the chunks making up that file.
// Given one or more indexes
// (see the index subpackage),
// or a log in which a verification tool reported missing chunks
// (see logscan),
// the transfer subpackage works out which chunks are needed
// and copies them from a source store to a destination store,
// skipping the ones that are already there
// unless asked to overwrite them.
//
// The Store interface in this package is what the transfer engine needs from a store.
// The store/file subpackage implements it on a sharded directory tree;
// store/mem implements it in memory.
package chunksync
