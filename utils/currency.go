package utils

import (
	"fmt"
	"math"
	"strconv"
)

// FormatCurrencyIDR memformat nominal ke rupiah dengan titik ribuan:
// 15000 -> "Rp 15.000", 15000.5 -> "Rp 15.000,50". Pecahan di bawah
// sen dibulatkan.
func FormatCurrencyIDR(amount float64) string {
	cents := int64(math.Round(amount * 100))
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	grouped := make([]byte, 0, len(digits)+len(digits)/3)
	for i := 0; i < len(digits); i++ {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, digits[i])
	}

	if frac > 0 {
		return fmt.Sprintf("Rp %s,%02d", grouped, frac)
	}
	return fmt.Sprintf("Rp %s", grouped)
}
