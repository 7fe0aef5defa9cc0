// Package git checks whether a notebook's plaintext index could end up in
// a git repository.
//
// Encrypted records may be committed. The index (index.json, or the bolt
// database that embeds it) carries titles, tags and access history in the
// clear and should be listed in .gitignore.
package git
