// Package billing holds the pure call-cost formula. It computes a monetary
// cost from a call's duration and whatever charge fields the voice provider
// reported; it performs no I/O and owns no state.
package billing

import "math"

// PerMinuteRate is the platform's default charge per connected minute,
// applied when the provider does not report its own per-call price.
const PerMinuteRate = 0.08

// CallCost returns the cost of a call in currency units, rounded to four
// decimal places. providerCost is the provider-reported charge for the call
// when available (its own metering); llmCharge covers any model usage the
// provider billed separately. When the provider reported nothing, the
// duration-based platform rate applies.
func CallCost(durationSecs int, providerCost, llmCharge float64) float64 {
	cost := providerCost + llmCharge
	if cost == 0 && durationSecs > 0 {
		cost = float64(durationSecs) / 60 * PerMinuteRate
	}
	return math.Round(cost*10000) / 10000
}
