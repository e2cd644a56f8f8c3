package config

import "os"

const (
	// GoGenerationPromptEnv overrides the prompt handed to the code-generation agent.
	GoGenerationPromptEnv = "GO_GENERATION_PROMPT"
	// InteractionPromptEnv overrides the prompt handed to the interaction agent.
	InteractionPromptEnv = "INTERACTION_PROMPT"
)

// DefaultGoGenerationPrompt is used when GO_GENERATION_PROMPT is unset or empty.
// $assignment is expanded by the LLM runtime, not here.
const DefaultGoGenerationPrompt = `You have an assignment to create a Go program.

Your task: $assignment

Requirements:
1. Create a main.go file in the /app directory
2. Write clean, well-commented Go code
3. Make the program interactive - it should accept user input and respond
4. Include proper error handling
5. Build the code to ensure it compiles successfully
6. Use go mod init if needed to create a proper Go module

The program should be designed to interact with users through stdin/stdout.
Make it engaging and demonstrate the functionality clearly.

Ensure the program will come to a natural conclusion and exit after a few exchanges (up to 20)

Always build the code with 'go build' to ensure it works before finishing.
Return the container with the working Go program.`

// DefaultInteractionPrompt is used when INTERACTION_PROMPT is unset or empty.
const DefaultInteractionPrompt = `You are a human user running a Go program. Your task is: $task

The program is in the $program container in the /app directory.

Steps to follow:
1. First, explore what's in the /app directory to understand the program structure
2. Look at the main.go file to understand what the program does
3. Build the program if it's not already built (go build)
4. Run the program once and interact with it naturally as a human user would
5. Document the interaction in a reliable, accurate 'as-it-happened' log`

// Prompts resolves the two pipeline prompt templates.
//
// Every call goes back to the lookup, so a value changed between two
// pipeline steps is picked up by the later step.
type Prompts struct {
	lookup LookupFunc
}

// NewPrompts returns a resolver backed by lookup. A nil lookup reads the
// process environment.
func NewPrompts(lookup LookupFunc) *Prompts {
	if lookup == nil {
		lookup = EnvLookup()
	}
	return &Prompts{lookup: lookup}
}

// GoGenerationPrompt returns the prompt for the code-generation step.
func (p *Prompts) GoGenerationPrompt() string {
	prompt, _ := p.Resolve(GoGenerationPromptEnv, DefaultGoGenerationPrompt)
	return prompt
}

// InteractionPrompt returns the prompt for the interaction step.
func (p *Prompts) InteractionPrompt() string {
	prompt, _ := p.Resolve(InteractionPromptEnv, DefaultInteractionPrompt)
	return prompt
}

// Resolve returns the value of key, or fallback when the key is unset or
// empty. The override is returned as-is; it is not checked for placeholders.
func (p *Prompts) Resolve(key, fallback string) (string, bool) {
	if v, ok := p.lookup(key); ok && v != "" {
		return v, true
	}
	return fallback, false
}

// Placeholders lists the $name and ${name} placeholders found in a prompt,
// in order of first appearance. Shell specials such as $5 or $$ are not names.
func Placeholders(prompt string) []string {
	var names []string
	seen := map[string]bool{}
	os.Expand(prompt, func(name string) string {
		if !isNameStart(name[0]) || seen[name] {
			return ""
		}
		seen[name] = true
		names = append(names, name)
		return ""
	})
	return names
}

func isNameStart(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// HasPlaceholder reports whether prompt references $name.
func HasPlaceholder(prompt, name string) bool {
	for _, n := range Placeholders(prompt) {
		if n == name {
			return true
		}
	}
	return false
}
