package integrators

import (
	"fmt"

	"github.com/san-kum/ratenet/internal/dynamo"
)

// ByName constructs the named integrator: euler, rk4, or rk45.
func ByName(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	case "rk45":
		return NewRK45(), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}

func Names() []string {
	return []string{"euler", "rk4", "rk45"}
}
