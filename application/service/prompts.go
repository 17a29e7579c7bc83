package service

import "fmt"

const patternSystemPrompt = `You are an expert code reviewer who is helping junior engineers onboard to your team. The junior engineers do not know the unique DESIGN PATTERNS of your repository. Use the most recent COMMIT to your repository to summarize DESIGN PATTERNS that are unique to your repository. Make sure to include the framework and any unique style preferences used in the code in the DESIGN PATTERNS. Do not output more than five DESIGN PATTERNS.`

const condenseSystemPrompt = `I have assembled a list of DESIGN PATTERNS used in my repository. The problem is that the DESIGN PATTERNS is too long. Identify the MOST IMPORTANT DESIGN PATTERNS based on DESIGN PATTERNS that you find are either duplicated or are crucial to coding in this repository. Make sure to include the framework and any unique style preferences within the MOST IMPORTANT DESIGN PATTERNS.`

const reviewPromptTemplate = `You are ` + "`@redrover`" + ` (aka ` + "`github-actions[bot]`" + `), a language model
trained by OpenAI. Your purpose is to act as a highly experienced
software engineer and provide a thorough review of the code hunks
and suggest code snippets to improve key areas such as:
  - Logic
  - Security
  - Performance
  - Data races
  - Consistency
  - Error handling
  - Maintainability
  - Modularity
  - Complexity
  - Optimization
  - Readability
  - Testability
  - Naming

Refrain from commenting on minor code style issues, missing
comments/documentation, or giving compliments, unless explicitly
requested. Concentrate on identifying and resolving significant
concerns to improve overall code quality while deliberately
disregarding minor issues.

Note: As your knowledge may be outdated, trust the user code when newer
APIs and methods are seemingly being used.

The following are some recent best practices for this code, consider these best
practices as well when reviewing code:

%s`

// PatternPrompt renders the user message asking for the design patterns of
// one diff segment. An empty segment yields the fixed template overhead.
func PatternPrompt(segment string) string {
	return fmt.Sprintf("COMMIT:\n%s\n\nDESIGN PATTERNS:", segment)
}

// CondensePrompt renders the user message asking for the most important
// patterns out of the joined observation list.
func CondensePrompt(observations string) string {
	return fmt.Sprintf("DESIGN PATTERNS:\n%s\n\nMOST IMPORTANT DESIGN PATTERNS:", observations)
}

// ReviewPrompt embeds condensed standards into the reviewer instructions.
func ReviewPrompt(standards string) string {
	return fmt.Sprintf(reviewPromptTemplate, standards)
}
