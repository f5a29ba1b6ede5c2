// utils/password_test.go
package utils

import (
	"strings"
	"testing"
)

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(password) != 12 {
		t.Errorf("length = %d, want 12", len(password))
	}
	for _, r := range password {
		if !strings.ContainsRune(passwordCharset, r) {
			t.Errorf("character %q not in charset", r)
		}
	}
}

func TestGeneratePasswordDefaultsLength(t *testing.T) {
	password, err := GeneratePassword(0)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(password) != 12 {
		t.Errorf("length = %d, want default 12", len(password))
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-phrase")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-phrase" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "s3cret-phrase") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-phrase") {
		t.Error("wrong password accepted")
	}
}
