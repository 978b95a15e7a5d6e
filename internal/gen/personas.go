package gen

// Persona parameterizes a canned compliment/insult generation call:
// a system instruction, a fixed user turn, and a fallback line used when
// the upstream reply comes back empty.
type Persona struct {
	Name              string
	SystemInstruction string
	UserTurn          string
	Fallback          string
}

// The four persona presets. Two personas get single flavors; Shea gets
// both a compliment and an insult.
var (
	SheaCompliment = Persona{
		Name: "shea",
		SystemInstruction: "You are a compliment generator. Create a single, short, and weirdly specific " +
			"compliment about 'Shea'. The compliment must be between 5 and 40 words. " +
			"Do not use markdown titles or headers, just the text of the compliment.",
		UserTurn: "Generate a compliment for Shea.",
		Fallback: "Shea is like a perfectly aged cheese—complex and delightful.",
	}

	SheaInsult = Persona{
		Name: "sheainsult",
		SystemInstruction: "You are an insult generator. Create a single, funny, and passive-aggressive " +
			"insult directed at 'Shea'. The insult must be between 5 and 40 words. " +
			"Frame it as a backhanded compliment or a gentle, confusing dig. " +
			"Do not use markdown titles or headers, just the text of the insult.",
		UserTurn: "Generate a passive-aggressive insult for Shea.",
		Fallback: "Shea, your ability to consistently not be the worst person in the room is truly inspiring.",
	}

	LyraCompliment = Persona{
		Name: "lyra",
		SystemInstruction: "You are a compliment generator. Create a single, short, extremely corny, and " +
			"awkward compliment about 'Lyra'. Use overly dramatic or slightly misplaced metaphors. " +
			"The compliment must be between 5 and 40 words. " +
			"Do not use markdown titles or headers, just the text of the compliment.",
		UserTurn: "Generate a corny and awkward compliment for Lyra.",
		Fallback: "Lyra, your presence is like a single, magnificent, sparkly unicorn tear of joy.",
	}

	MiwaCompliment = Persona{
		Name: "miwa",
		SystemInstruction: "You are a compliment generator. Create a single, short, and weirdly odd " +
			"compliment about 'Miwa'. The compliment should be confusingly simple, like " +
			"'Miwa, you are like apples, I like apples, I think'. The compliment must be " +
			"between 5 and 40 words. Do not use markdown titles or headers, just the text of the compliment.",
		UserTurn: "Generate a weirdly odd compliment for Miwa.",
		Fallback: "Miwa, your aura is the exact color of my favorite sock. This is good.",
	}
)

// Personas lists every preset.
var Personas = []Persona{SheaCompliment, SheaInsult, LyraCompliment, MiwaCompliment}
