package services

// Fee math for ticket sales. All amounts are integer cents. The platform fee
// and the processing fee are each rounded half-up independently from the
// gross amount (not cascaded) so audits can reproduce every line item.

const (
	// PlatformFeeBps is the platform commission: 10% of gross.
	PlatformFeeBps int64 = 1000
	// PlatformFeeFloorCents is the minimum platform fee per sale.
	PlatformFeeFloorCents int64 = 50
	// ProcessingFeeBps is the card/mobile-money processing rate: 2.9%.
	ProcessingFeeBps int64 = 290
	// ProcessingFeeFixedCents is the fixed per-sale processing charge.
	ProcessingFeeFixedCents int64 = 30
	// InstantFeeBps is the fee for instant prefunded MonCash transfers: 3%.
	InstantFeeBps int64 = 300
)

// roundBps applies a basis-point rate to an amount, rounding half up.
func roundBps(amountCents, bps int64) int64 {
	return (amountCents*bps + 5000) / 10000
}

// PlatformFee returns the platform commission for a gross sale amount.
func PlatformFee(grossCents int64) int64 {
	fee := roundBps(grossCents, PlatformFeeBps)
	if fee < PlatformFeeFloorCents {
		return PlatformFeeFloorCents
	}
	return fee
}

// ProcessingFee returns the payment-processing fee for a gross sale amount.
func ProcessingFee(grossCents int64) int64 {
	return roundBps(grossCents, ProcessingFeeBps) + ProcessingFeeFixedCents
}

// NetAmount returns what the organizer is entitled to from a gross sale.
func NetAmount(grossCents int64) int64 {
	return grossCents - PlatformFee(grossCents) - ProcessingFee(grossCents)
}

// InstantFee returns the fee charged for an instant prefunded transfer.
func InstantFee(amountCents int64) int64 {
	return roundBps(amountCents, InstantFeeBps)
}
