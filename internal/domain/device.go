package domain

// Device is an operator supplied target label and the value the global
// fixture's KNOWN_DEVICES table maps it to.
type Device struct {
	Label string
	Value string
}

// Labels returns the labels of the given devices in order
func Labels(devices []Device) []string {
	labels := make([]string, 0, len(devices))
	for _, d := range devices {
		labels = append(labels, d.Label)
	}
	return labels
}
