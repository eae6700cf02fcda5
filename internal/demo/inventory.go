package demo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// Resource is one object known to the inventory.
type Resource struct {
	Kind      string            `toml:"kind" json:"kind" yaml:"kind"`
	Name      string            `toml:"name" json:"name" yaml:"name"`
	Namespace string            `toml:"namespace" json:"namespace" yaml:"namespace"`
	Status    string            `toml:"status" json:"status" yaml:"status"`
	Labels    map[string]string `toml:"labels" json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Inventory is the source of resources shown and completed by the demo.
type Inventory interface {
	Kinds() []string
	Namespaces(ctx context.Context) ([]string, error)
	List(ctx context.Context, kind, namespace string) ([]Resource, error)
	Delete(ctx context.Context, kind, namespace, name string) error
}

type inventoryFile struct {
	Resources []Resource `toml:"resource"`
}

// MemoryInventory is an in-memory Inventory, optionally slowed down to
// simulate a remote API.
type MemoryInventory struct {
	mu        sync.RWMutex
	resources []Resource
	latency   time.Duration
}

// NewMemoryInventory returns an inventory holding resources.
func NewMemoryInventory(resources ...Resource) *MemoryInventory {
	return &MemoryInventory{resources: append([]Resource(nil), resources...)}
}

// LoadInventory reads a TOML file made of [[resource]] tables.
func LoadInventory(path string) (*MemoryInventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	var file inventoryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse inventory %s: %w", path, err)
	}
	for i, r := range file.Resources {
		if r.Kind == "" || r.Name == "" {
			return nil, fmt.Errorf("parse inventory %s: resource %d needs a kind and a name", path, i+1)
		}
		if r.Namespace == "" {
			file.Resources[i].Namespace = "default"
		}
	}
	return NewMemoryInventory(file.Resources...), nil
}

// SampleInventory returns the inventory used when no file is given.
func SampleInventory() *MemoryInventory {
	return NewMemoryInventory(
		Resource{Kind: "pod", Name: "web-7d9f", Namespace: "default", Status: "Running", Labels: map[string]string{"app": "web"}},
		Resource{Kind: "pod", Name: "web-a1c2", Namespace: "default", Status: "Pending", Labels: map[string]string{"app": "web"}},
		Resource{Kind: "pod", Name: "db-0", Namespace: "default", Status: "Running", Labels: map[string]string{"app": "db"}},
		Resource{Kind: "pod", Name: "coredns-5d78", Namespace: "kube-system", Status: "Running"},
		Resource{Kind: "service", Name: "web", Namespace: "default", Status: "ClusterIP"},
		Resource{Kind: "service", Name: "kube-dns", Namespace: "kube-system", Status: "ClusterIP"},
		Resource{Kind: "deployment", Name: "web", Namespace: "default", Status: "2/3"},
	)
}

// SetLatency delays every lookup by d.
func (m *MemoryInventory) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

func (m *MemoryInventory) wait(ctx context.Context) error {
	m.mu.RLock()
	d := m.latency
	m.mu.RUnlock()
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Kinds lists the resource kinds, sorted.
func (m *MemoryInventory) Kinds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	kinds := lo.Uniq(lo.Map(m.resources, func(r Resource, _ int) string { return r.Kind }))
	sort.Strings(kinds)
	return kinds
}

// Namespaces lists the namespaces in use, sorted.
func (m *MemoryInventory) Namespaces(ctx context.Context) ([]string, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns := lo.Uniq(lo.Map(m.resources, func(r Resource, _ int) string { return r.Namespace }))
	sort.Strings(ns)
	return ns, nil
}

// List returns the resources of kind in namespace, in insertion order.
func (m *MemoryInventory) List(ctx context.Context, kind, namespace string) ([]Resource, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Filter(m.resources, func(r Resource, _ int) bool {
		return r.Kind == kind && r.Namespace == namespace
	}), nil
}

// Delete removes one resource.
func (m *MemoryInventory) Delete(ctx context.Context, kind, namespace, name string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, idx, found := lo.FindIndexOf(m.resources, func(r Resource) bool {
		return r.Kind == kind && r.Namespace == namespace && r.Name == name
	})
	if !found {
		return fmt.Errorf("%s %q not found in namespace %q", kind, name, namespace)
	}
	m.resources = append(m.resources[:idx], m.resources[idx+1:]...)
	return nil
}
