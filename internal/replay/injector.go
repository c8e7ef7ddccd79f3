// Package replay plays recorded sessions back through an input injector.
// Actual OS-level injection is platform work that lives behind the Injector
// interface; this package ships a no-op injector and a console injector that
// narrates events instead of performing them.
package replay

import "fmt"

// Injector performs one input action. Implementations must be safe to call
// from the player goroutine only; the player never calls them concurrently.
type Injector interface {
	MoveRelative(dx, dy int) error
	Click(button string, pressed bool) error
	Scroll(dx, dy int) error
	KeyPress(key string) error
	KeyRelease(key string) error
}

// NoopInjector drops every action. Useful for timing dry runs.
type NoopInjector struct{}

func (NoopInjector) MoveRelative(dx, dy int) error           { return nil }
func (NoopInjector) Click(button string, pressed bool) error { return nil }
func (NoopInjector) Scroll(dx, dy int) error                 { return nil }
func (NoopInjector) KeyPress(key string) error               { return nil }
func (NoopInjector) KeyRelease(key string) error             { return nil }

// Logger is the subset of the console logger the injector needs.
type Logger interface {
	LogDebug(message string)
}

// ConsoleInjector narrates each action through the logger at debug level.
type ConsoleInjector struct {
	Logger Logger
}

// NewConsoleInjector creates an injector that logs actions instead of
// performing them.
func NewConsoleInjector(logger Logger) *ConsoleInjector {
	return &ConsoleInjector{Logger: logger}
}

func (c *ConsoleInjector) MoveRelative(dx, dy int) error {
	c.Logger.LogDebug(fmt.Sprintf("move %+d,%+d", dx, dy))
	return nil
}

func (c *ConsoleInjector) Click(button string, pressed bool) error {
	action := "release"
	if pressed {
		action = "press"
	}
	c.Logger.LogDebug(fmt.Sprintf("%s %s button", action, button))
	return nil
}

func (c *ConsoleInjector) Scroll(dx, dy int) error {
	c.Logger.LogDebug(fmt.Sprintf("scroll %+d,%+d", dx, dy))
	return nil
}

func (c *ConsoleInjector) KeyPress(key string) error {
	c.Logger.LogDebug(fmt.Sprintf("press key %q", key))
	return nil
}

func (c *ConsoleInjector) KeyRelease(key string) error {
	c.Logger.LogDebug(fmt.Sprintf("release key %q", key))
	return nil
}
