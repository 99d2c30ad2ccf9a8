// Package config holds the build manifest cmd/genconfig reads and the
// generated constants it emits. Grounded on the teacher's own host-side
// tooling precedent (chentry.go patches a built binary, mkfs.go builds a
// filesystem image from a directory tree): rv39core's equivalent is a
// YAML manifest turned into Go constants at build time rather than
// runtime configuration, since an embedded kernel has no argv/env to
// read them from.
package config

import "gopkg.in/yaml.v3"

// Manifest is config/kernel.yaml unmarshaled.
type Manifest struct {
	NPROC             int      `yaml:"nproc"`
	NOFILE            int      `yaml:"nofile"`
	RRQuantumTicks    int      `yaml:"rr_quantum_ticks"`
	StrideDefaultPass uint64   `yaml:"stride_default_pass"`
	Timebase          uint64   `yaml:"timebase"`
	SchedulerPolicy   string   `yaml:"scheduler_policy"`
	RootfsEntries     []string `yaml:"rootfs_entries"`
}

// Parse unmarshals a kernel.yaml manifest's bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
