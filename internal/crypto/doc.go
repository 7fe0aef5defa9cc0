// Package crypto provides per-record encryption for locknote.
//
// Every record is sealed independently with AES-256-GCM:
//   - 16-byte random salt per record (stored in the clear)
//   - 32-byte key derived from password and salt via PBKDF2-HMAC-SHA256,
//     100,000 iterations
//   - 12-byte random nonce per encryption operation
//   - hex SHA-256 of the plaintext appended as an integrity digest
//
// Stored blob (base64, standard alphabet):
//
//	salt(16) | nonce(12) | ciphertext + GCM tag | hex digest(64)
//
// The layout is shared with records written by earlier versions and must not
// change. Decrypt reports a distinct sentinel error for each failure; a wrong
// password and a tampered ciphertext both surface as ErrAuthFailed.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call RecordCipher.Destroy() when done with a cipher
package crypto
