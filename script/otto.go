package script

import (
	"fmt"
	"strings"

	"github.com/robertkrimen/otto"
)

// Runner evaluates a script and returns what it wrote with document.write.
type Runner func(src string) (string, error)

// RunOtto evaluates src as full JavaScript. Only document.write is provided
// by the host.
func RunOtto(src string) (string, error) {
	var out strings.Builder

	vm := otto.New()
	document, err := vm.Object("({})")
	if err != nil {
		return "", err
	}
	write := func(call otto.FunctionCall) otto.Value {
		for _, arg := range call.ArgumentList {
			out.WriteString(arg.String())
		}
		return otto.UndefinedValue()
	}
	if err := document.Set("write", write); err != nil {
		return "", err
	}
	if err := vm.Set("document", document); err != nil {
		return "", err
	}

	if _, err := vm.Run(src); err != nil {
		return "", fmt.Errorf("otto run:%w", err)
	}

	return out.String(), nil
}

// RunnerFor returns the runner registered under engine. The empty name
// selects the built-in interpreter.
func RunnerFor(engine string) (Runner, error) {
	switch engine {
	case "", "builtin":
		return Run, nil
	case "otto":
		return RunOtto, nil
	}

	return nil, fmt.Errorf("unknown script engine %q", engine)
}
