package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-mnemonic/config"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/storage"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/vault"
)

const testPhrase = "legal winner thank year wave sausage worth useful legal winner thank yellow"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Backup.Memory, cfg.Backup.Iterations, cfg.Backup.Parallelism = 64, 1, 1
	return cfg
}

// stubPassword makes promptPassword return pw for the duration of the test.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	saved := promptPassword
	promptPassword = func(string) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { promptPassword = saved })
}

func TestWithVault_ClosesOnError(t *testing.T) {
	cfg := testConfig(t)
	stubPassword(t, "pw")

	err := withVault(cfg, func(v *vault.Vault) error {
		return runVault(v, []string{"get", "--name", "missing"}, &bytes.Buffer{})
	})
	if !errors.Is(err, vault.ErrNotFound) {
		t.Fatalf("withVault() error = %v, want ErrNotFound", err)
	}

	// Badger holds a directory lock while open.
	db, err := storage.NewBadger(cfg.VaultDir())
	if err != nil {
		t.Fatalf("vault left open after a failed command: %v", err)
	}
	db.Close()
}

func TestRunVault_Lifecycle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Vault.Backend = config.BackendMemory
	stubPassword(t, "pw")

	err := withVault(cfg, func(v *vault.Vault) error {
		var out bytes.Buffer
		if err := runVault(v, []string{"put", "--name", "main", "--mnemonic", testPhrase}, &out); err != nil {
			t.Fatalf("put error: %v", err)
		}
		if !strings.Contains(out.String(), "Stored: main") {
			t.Errorf("put output = %q", out.String())
		}

		out.Reset()
		if err := runVault(v, []string{"list"}, &out); err != nil {
			t.Fatalf("list error: %v", err)
		}
		if !strings.Contains(out.String(), "main") || !strings.Contains(out.String(), "sha256") {
			t.Errorf("list output = %q", out.String())
		}

		out.Reset()
		if err := runVault(v, []string{"get", "--name", "main"}, &out); err != nil {
			t.Fatalf("get error: %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != testPhrase {
			t.Errorf("get output = %q, want %q", got, testPhrase)
		}

		out.Reset()
		if err := runVault(v, []string{"delete", "--name", "main"}, &out); err != nil {
			t.Fatalf("delete error: %v", err)
		}
		if err := runVault(v, []string{"get", "--name", "main"}, &out); !errors.Is(err, vault.ErrNotFound) {
			t.Errorf("get after delete error = %v, want ErrNotFound", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withVault() error: %v", err)
	}
}

func TestRunVault_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Vault.Backend = config.BackendMemory
	stubPassword(t, "pw")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"rename"}},
		{"put without name", []string{"put"}},
		{"put bad mnemonic", []string{"put", "--name", "x", "--mnemonic", "abandon abandon"}},
		{"get name and id", []string{"get", "--name", "a", "--id", "b"}},
		{"get bad id", []string{"get", "--id", "not-a-uuid"}},
		{"delete without name", []string{"delete"}},
		{"bad flag", []string{"delete", "--bogus"}},
	}

	err := withVault(cfg, func(v *vault.Vault) error {
		for _, tt := range tests {
			if err := runVault(v, tt.args, &bytes.Buffer{}); err == nil {
				t.Errorf("%s: runVault() should fail", tt.name)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withVault() error: %v", err)
	}
}

func TestReadNewPassword(t *testing.T) {
	stubPassword(t, "secret")
	pw, err := readNewPassword()
	if err != nil {
		t.Fatalf("readNewPassword() error: %v", err)
	}
	if string(pw) != "secret" {
		t.Errorf("readNewPassword() = %q, want secret", pw)
	}

	stubPassword(t, "")
	if _, err := readNewPassword(); err == nil {
		t.Error("readNewPassword() should reject an empty password")
	}

	calls := 0
	saved := promptPassword
	promptPassword = func(string) ([]byte, error) {
		calls++
		return []byte{byte('a' + calls)}, nil
	}
	defer func() { promptPassword = saved }()
	if _, err := readNewPassword(); err == nil {
		t.Error("readNewPassword() should reject mismatched passwords")
	}
}
