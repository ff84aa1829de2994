package arch

import "fmt"

// Known register counts.
const (
	RegisterCount = 16  // V0 through VF.
	FlagRegister  = 0xf // VF doubles as the carry/borrow/collision flag.
)

// RegisterName returns the name associated with the given register index.
// Returns "" if the index is not recognized.
func RegisterName(n int) string {
	if n < 0 || n >= RegisterCount {
		return ""
	}
	return fmt.Sprintf("V%X", n)
}
