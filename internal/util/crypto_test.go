package util

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSealOpenBackup(t *testing.T) {
	key := "test-encryption-key"

	testCases := []string{
		"Hello World",
		"Vary sy laoka",
		"",
		"Special!@#$%^&*()",
		strings.Repeat("A", 1000),
	}

	for _, plaintext := range testCases {
		sealed, err := SealBackup(key, []byte(plaintext))
		if err != nil {
			t.Fatalf("seal %q: %v", plaintext, err)
		}
		if !bytes.HasPrefix(sealed, []byte("MTBK\x01")) {
			t.Fatalf("seal %q: missing header", plaintext)
		}

		opened, err := OpenBackup(key, sealed)
		if err != nil {
			t.Fatalf("open %q: %v", plaintext, err)
		}
		if string(opened) != plaintext {
			t.Errorf("roundtrip mismatch\nwant: %s\ngot:  %s", plaintext, string(opened))
		}
	}
}

func TestSealBackup_FreshNonce(t *testing.T) {
	plaintext := []byte("Secret Data")

	a, _ := SealBackup("key1", plaintext)
	b, _ := SealBackup("key1", plaintext)

	if bytes.Equal(a, b) {
		t.Error("two seals of the same data should differ")
	}
}

func TestOpenBackup_WrongKey(t *testing.T) {
	sealed, _ := SealBackup("correct-key", []byte("Data"))

	if _, err := OpenBackup("wrong-key", sealed); err == nil {
		t.Error("opening with the wrong key should fail")
	}
}

func TestOpenBackup_Header(t *testing.T) {
	key := "test-key"
	sealed, err := SealBackup(key, []byte("Data"))
	if err != nil {
		t.Fatal(err)
	}

	for _, data := range [][]byte{nil, {1, 2, 3}, []byte("PK\x03\x04 zip file")} {
		if _, err := OpenBackup(key, data); !errors.Is(err, ErrNotBackup) {
			t.Errorf("OpenBackup(%q) error = %v, want ErrNotBackup", data, err)
		}
	}

	if _, err := OpenBackup(key, sealed[:8]); !errors.Is(err, ErrNotBackup) {
		t.Errorf("truncated backup error = %v, want ErrNotBackup", err)
	}

	newer := bytes.Clone(sealed)
	newer[4] = 2
	if _, err := OpenBackup(key, newer); !errors.Is(err, ErrBackupVersion) {
		t.Errorf("version 2 error = %v, want ErrBackupVersion", err)
	}

	tampered := bytes.Clone(sealed)
	tampered[len(tampered)-1] ^= 0xff
	if _, err := OpenBackup(key, tampered); err == nil {
		t.Error("tampered ciphertext should fail")
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if len(id) != 36 || id[14] != '4' {
			t.Fatalf("NewID() = %q, want a v4 uuid", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func BenchmarkSealBackup(b *testing.B) {
	key := "bench-key"
	data := []byte("Benchmark data")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = SealBackup(key, data)
	}
}
