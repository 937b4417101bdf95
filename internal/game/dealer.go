package game

// dealerShouldHit reports whether the house policy requires another
// card: below 17 always, and on soft 17 when the H17 rule is in play.
func dealerShouldHit(rules Rules, h *Hand) bool {
	value := h.Value()
	return value < 17 || (rules.DealerHitsSoft17 && h.IsSoft() && value == 17)
}

// PlayDealer runs the fixed, non-interactive dealer policy: draw while
// the policy demands it, stopping immediately on a bust. draw supplies
// each card (the round wires it to the shoe plus deal-ID assignment)
// and onHit observes each drawn card; either may be exercised zero
// times for a pat hand.
func PlayDealer(rules Rules, hand *Hand, draw func() DealtCard, onHit func(DealtCard)) {
	for dealerShouldHit(rules, hand) {
		card := draw()
		hand.Add(card)
		if onHit != nil {
			onHit(card)
		}
		// The loop condition would stop anyway on a bust, but the
		// break keeps that invariant local.
		if hand.IsBusted() {
			break
		}
	}
}
