package reservation

import (
	"time"

	"cabana/internal/model"
)

// Quote returns the booked hours and total price of [checkIn, checkOut) at the given hourly rate.
func Quote(pricePerHour model.Money, checkIn, checkOut time.Time) (float64, model.Money) {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0, 0
	}
	return d.Hours(), pricePerHour.PriceFor(d)
}
