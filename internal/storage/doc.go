// Package storage persists encoded record blobs and the plaintext index.
//
// Two backends implement Backend:
//   - file: one <id>.enc file per record plus index.json, replaced atomically
//     via temp file and rename inside an os.Root
//   - bolt: a single bbolt database with three buckets
//
// Bolt bucket layout:
//   - config: format version and timestamps (unencrypted)
//   - records: encoded blobs keyed by record ID
//   - index: the JSON index (unencrypted, for ls and history)
//
// The index holds titles, tags, timestamps, the access history and the
// bcrypt credential hash. It never holds note content, so listing works
// without deriving a key.
package storage
