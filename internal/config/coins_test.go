package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCoinsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coins.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write coins file: %v", err)
	}
	return path
}

func TestLoadCoinSet(t *testing.T) {
	path := writeCoinsFile(t, `coins:
  - id: Bitcoin
    ticker: btc
  - id: ethereum
    ticker: eth
`)

	set, err := LoadCoinSet(path)
	if err != nil {
		t.Fatalf("LoadCoinSet failed: %v", err)
	}

	if !set.Contains("bitcoin") || !set.Contains("BITCOIN") {
		t.Errorf("Expected case-insensitive lookup for bitcoin")
	}
	if set.Contains("dogecoin") {
		t.Errorf("Did not expect dogecoin in the set")
	}

	ids := set.Ids()
	if len(ids) != 2 || ids[0] != "bitcoin" || ids[1] != "ethereum" {
		t.Errorf("Expected lowercase ids in file order, got %v", ids)
	}
}

func TestLoadCoinSet_Empty(t *testing.T) {
	path := writeCoinsFile(t, "coins: []\n")

	if _, err := LoadCoinSet(path); err == nil {
		t.Errorf("Expected error for empty coin list")
	}
}

func TestLoadCoinSet_DuplicateId(t *testing.T) {
	path := writeCoinsFile(t, `coins:
  - id: bitcoin
  - id: Bitcoin
`)

	if _, err := LoadCoinSet(path); err == nil {
		t.Errorf("Expected error for duplicate coin id")
	}
}

func TestNewCoinSet(t *testing.T) {
	set := NewCoinSet("Bitcoin", "ethereum", "bitcoin")

	if !set.Contains("bitcoin") || !set.Contains("ethereum") {
		t.Errorf("Expected both coins present")
	}
	if len(set.Ids()) != 2 {
		t.Errorf("Expected duplicates collapsed, got %v", set.Ids())
	}
}
