// Package status models the four-valued install/registration state of a
// unit and the file-backed cache that avoids repeated CLI round trips to
// recompute it.
package status

// Status is the derived combination of two independent booleans: present
// on disk, and listed by the external CLI. It is never authoritative; the
// filesystem and the CLI are.
type Status string

const (
	NotInstalled Status = "not_installed"
	Installed    Status = "installed"
	Registered   Status = "registered"
	Both         Status = "both"
)

// Parse returns the Status for s and whether s named a valid one.
func Parse(s string) (Status, bool) {
	switch Status(s) {
	case NotInstalled, Installed, Registered, Both:
		return Status(s), true
	}
	return "", false
}

// FromState classifies the (installed, registered) pair.
func FromState(installed, registered bool) Status {
	switch {
	case installed && registered:
		return Both
	case registered:
		return Registered
	case installed:
		return Installed
	default:
		return NotInstalled
	}
}

// Icon returns the marker used in terminal listings.
func (s Status) Icon() string {
	switch s {
	case Both:
		return "✅"
	case Installed:
		return "📦"
	case Registered:
		return "🔗"
	default:
		return "❌"
	}
}

// Label returns a human-readable form.
func (s Status) Label() string {
	switch s {
	case Both:
		return "installed + registered"
	case Installed:
		return "installed"
	case Registered:
		return "registered only"
	default:
		return "not installed"
	}
}
