// Package input holds the platform-independent key codes used by host controls.
package input

// Key codes delivered to window key callbacks. They are GLFW key codes, which use ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace     uint32 = 32
	KeyMinus     uint32 = 45
	KeyEqual     uint32 = 61
	KeyP         uint32 = 80
	KeyR         uint32 = 82
	KeyEsc       uint32 = 256
	KeyBackspace uint32 = 259

	Key0 uint32 = 48
	Key9 uint32 = 57
)

// Digit returns the numeric value of a digit key and whether keyCode is one.
//
// Parameters:
//   - keyCode: the key code from a key callback
//
// Returns:
//   - int: 0 through 9
//   - bool: false if keyCode is not a digit key
func Digit(keyCode uint32) (int, bool) {
	if keyCode < Key0 || keyCode > Key9 {
		return 0, false
	}
	return int(keyCode - Key0), true
}
