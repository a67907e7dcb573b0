package chain

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// PairConfig is one DLMM pair entry of the registry file
type PairConfig struct {
	Name            string  `yaml:"name"`
	LbPair          string  `yaml:"lb_pair"`
	TokenXMint      string  `yaml:"token_x_mint"`
	TokenYMint      string  `yaml:"token_y_mint"`
	ReserveX        string  `yaml:"reserve_x"`
	ReserveY        string  `yaml:"reserve_y"`
	Oracle          string  `yaml:"oracle"`
	BitmapExtension string  `yaml:"bitmap_extension,omitempty"`
	BinArrayIndexes []int64 `yaml:"bin_array_indexes"`
}

type registryFile struct {
	Pairs []PairConfig `yaml:"pairs"`
}

// Pair is a parsed, ready-to-use DLMM pair
type Pair struct {
	Name            string
	LbPair          solana.PublicKey
	TokenXMint      solana.PublicKey
	TokenYMint      solana.PublicKey
	ReserveX        solana.PublicKey
	ReserveY        solana.PublicKey
	Oracle          solana.PublicKey
	BitmapExtension *solana.PublicKey
	BinArrayIndexes []int64
}

// PairRegistry holds all configured pairs
type PairRegistry struct {
	pairs []Pair
}

// LoadPairRegistry reads pairs from a YAML file
func LoadPairRegistry(path string) (*PairRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pair registry: %w", err)
	}
	return ParsePairRegistry(data)
}

// ParsePairRegistry parses a YAML registry document
func ParsePairRegistry(data []byte) (*PairRegistry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	pairs := make([]Pair, 0, len(file.Pairs))
	for i, cfg := range file.Pairs {
		p, err := parsePairConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("pair %d (%s): %w", i, cfg.Name, err)
		}
		pairs = append(pairs, p)
	}
	return &PairRegistry{pairs: pairs}, nil
}

func parsePairConfig(cfg PairConfig) (Pair, error) {
	p := Pair{Name: cfg.Name, BinArrayIndexes: cfg.BinArrayIndexes}

	fields := []struct {
		name string
		raw  string
		dst  *solana.PublicKey
	}{
		{"lb_pair", cfg.LbPair, &p.LbPair},
		{"token_x_mint", cfg.TokenXMint, &p.TokenXMint},
		{"token_y_mint", cfg.TokenYMint, &p.TokenYMint},
		{"reserve_x", cfg.ReserveX, &p.ReserveX},
		{"reserve_y", cfg.ReserveY, &p.ReserveY},
		{"oracle", cfg.Oracle, &p.Oracle},
	}
	for _, f := range fields {
		pk, err := solana.PublicKeyFromBase58(f.raw)
		if err != nil {
			return Pair{}, fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = pk
	}

	if p.TokenXMint.Equals(p.TokenYMint) {
		return Pair{}, fmt.Errorf("token_x_mint and token_y_mint must differ")
	}
	if len(p.BinArrayIndexes) == 0 {
		return Pair{}, fmt.Errorf("bin_array_indexes must not be empty")
	}

	if cfg.BitmapExtension != "" {
		ext, err := solana.PublicKeyFromBase58(cfg.BitmapExtension)
		if err != nil {
			return Pair{}, fmt.Errorf("invalid bitmap_extension: %w", err)
		}
		p.BitmapExtension = &ext
	}

	return p, nil
}

// FindByMints returns the pair trading mintA against mintB in either direction
func (r *PairRegistry) FindByMints(mintA, mintB solana.PublicKey) (*Pair, error) {
	for i := range r.pairs {
		p := &r.pairs[i]
		if (p.TokenXMint.Equals(mintA) && p.TokenYMint.Equals(mintB)) ||
			(p.TokenXMint.Equals(mintB) && p.TokenYMint.Equals(mintA)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no DLMM pair registered for mints %s / %s", mintA, mintB)
}

// FindByName returns a pair by its registry name
func (r *PairRegistry) FindByName(name string) (*Pair, error) {
	for i := range r.pairs {
		if r.pairs[i].Name == name {
			return &r.pairs[i], nil
		}
	}
	return nil, fmt.Errorf("pair not found: %s", name)
}

// Pairs returns all registered pairs
func (r *PairRegistry) Pairs() []Pair {
	return r.pairs
}

func (r *PairRegistry) Len() int {
	return len(r.pairs)
}
