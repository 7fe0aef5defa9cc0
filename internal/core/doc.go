// Package core provides the notebook operations of locknote.
//
// Core operations include:
//   - Init: create the index and store the bcrypt credential
//   - Create/Read/Update/Rename/Delete: per-note encryption, each note sealed
//     independently with its own salt and nonce
//   - Recover: reopen a note sealed under an old password and reseal it
//     under the current one
//   - ChangePassword: replace the credential, optionally rekeying every
//     readable note
//
// Listing, status and history only read the plaintext index and need no
// password.
package core
