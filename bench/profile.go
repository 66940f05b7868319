package bench

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"seqlock/constants"
)

// Profile is the YAML form of a Config. Omitted fields keep their defaults.
//
//	iterations: 10000000
//	trials: 21
//	reader_cpu: 2
//	writer_cpu: 3
type Profile struct {
	Iterations *uint64 `yaml:"iterations"`
	Trials     *int    `yaml:"trials"`
	ReaderCPU  *int    `yaml:"reader_cpu"`
	WriterCPU  *int    `yaml:"writer_cpu"`
}

// LoadProfile reads and decodes a profile file. Unknown keys are rejected.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bench: read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a profile document. An empty document is an empty
// profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("bench: parse profile: %w", err)
	}
	return &p, nil
}

// Apply overlays the fields set in p onto c.
func (p *Profile) Apply(c Config) Config {
	if p == nil {
		return c
	}
	if p.Iterations != nil {
		c.Iterations = *p.Iterations
	}
	if p.Trials != nil {
		c.Trials = *p.Trials
	}
	if p.ReaderCPU != nil {
		c.ReaderCPU = *p.ReaderCPU
	}
	if p.WriterCPU != nil {
		c.WriterCPU = *p.WriterCPU
	}
	if c.ReaderCPU < 0 {
		c.ReaderCPU = constants.NoCPU
	}
	if c.WriterCPU < 0 {
		c.WriterCPU = constants.NoCPU
	}
	return c
}
