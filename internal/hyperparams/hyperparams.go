// Package hyperparams holds the ordered hyperparameter store a run logs
// to its experiment tracker at start.
package hyperparams

import (
	"fmt"

	"github.com/lunaml/luna16/internal/registry"
)

// ServiceKey is the registry key the container is registered under.
const ServiceKey registry.Key = "hyperparams.container"

// Param is one named hyperparameter.
type Param struct {
	Name  string
	Value string
}

// Container stores hyperparameters in insertion order. Values are
// stringified on insert; trackers only ever render them.
type Container struct {
	order  []string
	values map[string]string
}

// New creates an empty container
func New() *Container {
	return &Container{values: make(map[string]string)}
}

// Set stores value under name, overwriting a previous value but keeping
// the original position.
func (c *Container) Set(name string, value any) {
	if _, ok := c.values[name]; !ok {
		c.order = append(c.order, name)
	}
	c.values[name] = fmt.Sprintf("%v", value)
}

// Get returns the value stored under name
func (c *Container) Get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// All returns every parameter in insertion order
func (c *Container) All() []Param {
	params := make([]Param, 0, len(c.order))
	for _, name := range c.order {
		params = append(params, Param{Name: name, Value: c.values[name]})
	}
	return params
}

// Len returns the number of stored parameters
func (c *Container) Len() int {
	return len(c.order)
}
