package cli

import "fmt"

// formatFactor renders a nullable factor, "-" when it was not computed.
func formatFactor(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
