package domain

import "fmt"

// Cents is a money amount in euro cents. Totals must add up exactly, so no
// floating point anywhere in the pricing path.
type Cents int64

func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s€%d.%02d", sign, c/100, c%100)
}

// Euros renders the amount as a plain decimal for JSON payloads that talk to
// the payment terminal.
func (c Cents) Euros() float64 { return float64(c) / 100 }
