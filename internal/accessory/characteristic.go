// Package accessory models the platform-facing light accessory: typed
// characteristics, the lightbulb service grouping them, and the reconciler
// that keeps a service in sync with its device.
package accessory

import (
	"sync"
)

// Bool is a boolean characteristic such as On. A platform actor changes it
// through Set, which runs the registered set handler; the device side pushes
// values through Update, which never runs the set handler.
type Bool struct {
	name string

	mu     sync.Mutex
	value  bool
	onSet  func(bool) error
	notify func(name string, value any)
}

// NewBool creates a boolean characteristic.
func NewBool(name string) *Bool {
	return &Bool{name: name}
}

// Name returns the characteristic name.
func (c *Bool) Name() string { return c.name }

// OnSet registers the handler invoked for platform-originated writes.
func (c *Bool) OnSet(fn func(bool) error) {
	c.mu.Lock()
	c.onSet = fn
	c.mu.Unlock()
}

// Set applies a platform-originated write. The set handler runs outside the
// characteristic lock; the value is stored only if the handler accepts it.
func (c *Bool) Set(v bool) error {
	c.mu.Lock()
	fn := c.onSet
	c.mu.Unlock()

	if fn != nil {
		if err := fn(v); err != nil {
			return err
		}
	}
	c.store(v)
	return nil
}

// Update applies a device-originated value push. The set handler is never
// invoked on this path.
func (c *Bool) Update(v bool) {
	c.store(v)
}

// Value returns the current value.
func (c *Bool) Value() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Bool) store(v bool) {
	c.mu.Lock()
	changed := c.value != v
	c.value = v
	notify := c.notify
	c.mu.Unlock()
	if changed && notify != nil {
		notify(c.name, v)
	}
}

// Int is an integer characteristic with an inclusive valid range, such as
// Brightness [0,100] or Hue [0,359]. Writes are clamped to the range.
type Int struct {
	name     string
	min, max int

	mu     sync.Mutex
	value  int
	onSet  func(int) error
	notify func(name string, value any)
}

// NewInt creates an integer characteristic with the given bounds.
func NewInt(name string, min, max int) *Int {
	return &Int{name: name, min: min, max: max}
}

// Name returns the characteristic name.
func (c *Int) Name() string { return c.name }

// Min returns the lower bound.
func (c *Int) Min() int { return c.min }

// Max returns the upper bound.
func (c *Int) Max() int { return c.max }

// OnSet registers the handler invoked for platform-originated writes.
func (c *Int) OnSet(fn func(int) error) {
	c.mu.Lock()
	c.onSet = fn
	c.mu.Unlock()
}

// Set applies a platform-originated write, clamped to the valid range.
func (c *Int) Set(v int) error {
	v = c.clamp(v)

	c.mu.Lock()
	fn := c.onSet
	c.mu.Unlock()

	if fn != nil {
		if err := fn(v); err != nil {
			return err
		}
	}
	c.store(v)
	return nil
}

// Update applies a device-originated value push, clamped to the valid range.
func (c *Int) Update(v int) {
	c.store(c.clamp(v))
}

// Value returns the current value.
func (c *Int) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Int) clamp(v int) int {
	if v < c.min {
		return c.min
	}
	if v > c.max {
		return c.max
	}
	return v
}

func (c *Int) store(v int) {
	c.mu.Lock()
	changed := c.value != v
	c.value = v
	notify := c.notify
	c.mu.Unlock()
	if changed && notify != nil {
		notify(c.name, v)
	}
}
