package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// CoinConfig describes one entry of the supported-coin allow-list. Id is the
// canonical lowercase coin identifier used everywhere in the ledger (and as
// the price oracle query id); Ticker is the short display symbol.
type CoinConfig struct {
	Id     string `yaml:"id"`
	Ticker string `yaml:"ticker"`
}

type coinsFile struct {
	Coins []CoinConfig `yaml:"coins"`
}

// CoinSet is the validated supported-coin allow-list. Lookups are
// case-insensitive; coin ids are stored lowercase.
type CoinSet struct {
	coins map[string]CoinConfig
	order []string
}

func LoadCoinSet(file string) (*CoinSet, error) {
	var path string
	if filepath.IsAbs(file) {
		path = file
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, file)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", file, err)
	}

	var parsed coinsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", file, err)
	}
	if len(parsed.Coins) == 0 {
		return nil, fmt.Errorf("%s lists no supported coins", file)
	}

	set := &CoinSet{coins: make(map[string]CoinConfig, len(parsed.Coins))}
	for i, coin := range parsed.Coins {
		if coin.Id == "" {
			return nil, fmt.Errorf("coin at index %d missing id", i)
		}
		id := strings.ToLower(coin.Id)
		if _, exists := set.coins[id]; exists {
			return nil, fmt.Errorf("duplicate coin id %q", id)
		}
		coin.Id = id
		set.coins[id] = coin
		set.order = append(set.order, id)
	}

	return set, nil
}

// NewCoinSet builds a set from bare coin ids. Used by tests and tooling.
func NewCoinSet(ids ...string) *CoinSet {
	set := &CoinSet{coins: make(map[string]CoinConfig, len(ids))}
	for _, id := range ids {
		id = strings.ToLower(id)
		if _, exists := set.coins[id]; exists {
			continue
		}
		set.coins[id] = CoinConfig{Id: id}
		set.order = append(set.order, id)
	}
	return set
}

// Contains reports whether the coin id is on the allow-list.
func (s *CoinSet) Contains(coin string) bool {
	_, ok := s.coins[strings.ToLower(coin)]
	return ok
}

// Ids returns the supported coin ids in file order.
func (s *CoinSet) Ids() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}
