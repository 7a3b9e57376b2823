package habit

// MilestoneThresholds are the streak lengths celebrated in the product, in
// ascending order.
var MilestoneThresholds = []int{7, 14, 30, 50, 100, 200, 365}

// NextMilestone returns the first threshold above the current streak, or
// false when the streak has passed them all.
func NextMilestone(currentStreak int) (int, bool) {
	for _, m := range MilestoneThresholds {
		if m > currentStreak {
			return m, true
		}
	}
	return 0, false
}

// IsMilestone reports whether a streak sits exactly on a threshold.
func IsMilestone(streak int) bool {
	for _, m := range MilestoneThresholds {
		if m == streak {
			return true
		}
	}
	return false
}
