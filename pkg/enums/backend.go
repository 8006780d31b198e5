package enums

import "fmt"

// Backend selects which commerce provider serves catalog and order operations.
// The value is resolved once at startup; request handlers never re-read it.
type Backend string

const (
	BackendDirect   Backend = "direct"
	BackendHeadless Backend = "headless"
)

func (b Backend) String() string {
	return string(b)
}

func (b Backend) IsValid() bool {
	return b == BackendDirect || b == BackendHeadless
}

// ParseBackend converts raw config input into a Backend.
func ParseBackend(value string) (Backend, error) {
	switch Backend(value) {
	case BackendDirect:
		return BackendDirect, nil
	case BackendHeadless:
		return BackendHeadless, nil
	}
	return "", fmt.Errorf("invalid commerce backend %q", value)
}
