package util

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
)

// Backup files are laid out as
//
//	magic(4) | version(1) | nonce | AES-256-GCM ciphertext
//
// The magic and version are authenticated as additional data, so a header
// edited after the fact fails to open.
const (
	backupMagic   = "MTBK"
	backupVersion = byte(1)
)

var (
	// ErrNotBackup is returned for data without the backup header.
	ErrNotBackup = errors.New("not a ledger backup")
	// ErrBackupVersion is returned for a backup written by a newer format.
	ErrBackupVersion = errors.New("unsupported backup version")
)

// deriveKey always yields a 32 byte key so any configured passphrase works.
func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

func newGCM(passphrase string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func backupHeader(version byte) []byte {
	return append([]byte(backupMagic), version)
}

// SealBackup encrypts a serialized snapshot into the backup file format.
func SealBackup(passphrase string, snapshot []byte) ([]byte, error) {
	gcm, err := newGCM(passphrase)
	if err != nil {
		return nil, err
	}
	header := backupHeader(backupVersion)
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	out := make([]byte, 0, len(header)+len(nonce)+len(snapshot)+gcm.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, snapshot, header), nil
}

// OpenBackup checks the header and decrypts a file written by SealBackup.
func OpenBackup(passphrase string, data []byte) ([]byte, error) {
	if len(data) < len(backupMagic)+1 || !bytes.HasPrefix(data, []byte(backupMagic)) {
		return nil, ErrNotBackup
	}
	header := data[:len(backupMagic)+1]
	if v := header[len(backupMagic)]; v != backupVersion {
		return nil, fmt.Errorf("%w: %d", ErrBackupVersion, v)
	}

	gcm, err := newGCM(passphrase)
	if err != nil {
		return nil, err
	}
	body := data[len(header):]
	if len(body) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("%w: truncated", ErrNotBackup)
	}
	nonce, sealed := body[:gcm.NonceSize()], body[gcm.NonceSize():]
	snapshot, err := gcm.Open(nil, nonce, sealed, header)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return snapshot, nil
}
