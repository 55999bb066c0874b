package assembly

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/Ensamble-api/internal/domain"
)

// MaxAssemblyUnits tope de unidades por ensamble. Coincide con los 4 dígitos del número de unidad
// en el serial.
const MaxAssemblyUnits = 9999

// ParseUnits interpreta la cantidad de unidades a ensamblar: entero entre 1 y MaxAssemblyUnits.
func ParseUnits(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > MaxAssemblyUnits {
		return 0, fmt.Errorf("%w: la cantidad debe ser un entero entre 1 y %d", domain.ErrInvalidInput, MaxAssemblyUnits)
	}
	return n, nil
}
