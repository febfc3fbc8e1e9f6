package definition

import "fmt"

// Factory is the construction strategy of a definition that is not built by
// its class constructor. The concrete variants are [FunctionFactory],
// [ServiceFactory], [ClassFactory] and [InlineFactory].
type Factory interface {
	fmt.Stringer
	factory()
}

// FunctionFactory builds the instance by calling a free function.
type FunctionFactory struct {
	Name string
}

// ServiceFactory builds the instance by calling a method on another service.
type ServiceFactory struct {
	Service Reference
	Method  string
}

// ClassFactory builds the instance by calling a static method on a class.
type ClassFactory struct {
	Class  string
	Method string
}

// InlineFactory builds the instance by calling a static method on the type
// of an inline definition.
type InlineFactory struct {
	Definition *Definition
	Method     string
}

func (FunctionFactory) factory() {}
func (ServiceFactory) factory()  {}
func (ClassFactory) factory()    {}
func (InlineFactory) factory()   {}

func (f FunctionFactory) String() string { return f.Name }

func (f ServiceFactory) String() string { return f.Service.String() + "::" + f.Method }

func (f ClassFactory) String() string { return f.Class + "::" + f.Method }

func (f InlineFactory) String() string {
	class := ""
	if f.Definition != nil {
		class = f.Definition.Class
	}
	return "inline(" + class + ")::" + f.Method
}
