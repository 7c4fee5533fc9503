// Package leveling turns chat activity into experience and levels, and decides
// which threshold roles a member has earned.
package leveling

import "math"

const (
	// MinExperienceDelta and MaxExperienceDelta bound the experience awarded per message
	MinExperienceDelta = 10
	MaxExperienceDelta = 25
)

// LevelForExperience returns floor(sqrt(e/100)) + 1
func LevelForExperience(e int) int {
	if e <= 0 {
		return 1
	}
	level := int(math.Sqrt(float64(e) / 100))
	// float rounding can land one off near perfect squares
	for experienceForLevel(level+2) <= e {
		level++
	}
	for level > 0 && experienceForLevel(level+1) > e {
		level--
	}
	return level + 1
}

// ExperienceForLevel returns the minimum experience of level L: (L-1)^2 * 100
func ExperienceForLevel(level int) int {
	return experienceForLevel(level)
}

func experienceForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return n * n * 100
}

// ExperienceToNextLevel returns how much experience is missing for the next level
func ExperienceToNextLevel(e int) int {
	return ExperienceForLevel(LevelForExperience(e)+1) - e
}

// Progress returns the fraction of the current level already completed, in [0,1)
func Progress(e int) float64 {
	level := LevelForExperience(e)
	floor := ExperienceForLevel(level)
	span := ExperienceForLevel(level+1) - floor
	if span <= 0 {
		return 0
	}
	return float64(e-floor) / float64(span)
}
