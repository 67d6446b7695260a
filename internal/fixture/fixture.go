// Package fixture provides the hand-authored company dataset returned when
// live discovery is unavailable.
package fixture

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed companies.yaml
var defaultYAML []byte

// Dataset is an immutable list of fixture companies.
type Dataset struct {
	companies []lead.Company
}

// Default returns the embedded dataset.
func Default() Dataset {
	ds, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("fixture: embedded dataset: %v", err))
	}
	return ds
}

// Load reads a dataset from a YAML file. An empty path returns Default.
func Load(path string) (Dataset, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, eris.Wrapf(err, "fixture: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML sequence of companies.
func Parse(data []byte) (Dataset, error) {
	var companies []lead.Company
	if err := yaml.Unmarshal(data, &companies); err != nil {
		return Dataset{}, eris.Wrap(err, "fixture: parse")
	}
	if len(companies) == 0 {
		return Dataset{}, eris.New("fixture: dataset is empty")
	}
	return Dataset{companies: companies}, nil
}

// Len reports the number of companies in the dataset.
func (d Dataset) Len() int {
	return len(d.companies)
}

// Take returns a copy of the first n companies. n <= 0 yields an empty slice.
func (d Dataset) Take(n int) []lead.Company {
	if n <= 0 {
		return []lead.Company{}
	}
	if n > len(d.companies) {
		n = len(d.companies)
	}
	out := make([]lead.Company, n)
	copy(out, d.companies[:n])
	return out
}
