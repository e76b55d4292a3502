package util

import (
	"fmt"
	"math/rand"
)

var epithets = []string{
	"Lucky", "Crooked", "Dusty", "Smiling", "One-Eyed", "Quiet", "Rambling", "Gilded", "Restless", "Wandering",
	"Midnight", "Copper", "Silver", "Hollow", "Grinning", "Patient", "Reckless", "Weathered", "Sly", "Stubborn",
	"Marked", "Wayward", "Drifting", "Shifty", "Steady", "Bold", "Grim", "Sunburnt", "Whistling", "Rusty",
}

var drifters = []string{
	"Gambler", "Drifter", "Gunhand", "Tinker", "Preacher", "Prospector", "Ranger", "Stranger", "Dealer", "Rustler",
	"Outrider", "Cardsharp", "Trapper", "Vagabond", "Duelist", "Wanderer", "Smith", "Scribe", "Fiddler", "Peddler",
	"Bounty", "Maverick", "Sheriff", "Deputy", "Mystic",
}

// GetRandomName returns a random name by combining an epithet with a drifter archetype
func GetRandomName() string {
	epithetsIndex := rand.Intn(len(epithets))
	driftersIndex := rand.Intn(len(drifters))

	return fmt.Sprintf("%s %s", epithets[epithetsIndex], drifters[driftersIndex])
}
