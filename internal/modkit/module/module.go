// Package module defines the contract modules satisfy and the registry main
// uses to cross wire their ports
package module

// Module is the minimal surface of a wired service module
type Module interface {
	// Ports returns the module port bundle, usually a struct of interfaces
	Ports() any
	// Name identifies the module in logs and in the registry
	Name() string
}

// Publish registers m's ports under its name and returns m
func Publish[M Module](m M) M {
	Register(m.Name(), m.Ports())
	return m
}
