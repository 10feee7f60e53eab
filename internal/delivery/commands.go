package delivery

import (
	"strings"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
)

// CommandKind classifies a recognized operator command.
type CommandKind int

const (
	KindUnknown CommandKind = iota
	KindStart
	KindHelp
	KindStatus
	KindCreatePost
)

// Command is the parsed form of an operator message.
type Command struct {
	Kind     CommandKind
	Topic    string
	Category domain.PostCategory
}

const createPrefix = "create post about "

// ParseCommand recognizes "/start", "/help", "/status" and
// "create post about <topic>"; everything else is unknown.
func ParseCommand(text string) Command {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "/start":
		return Command{Kind: KindStart}
	case "/help":
		return Command{Kind: KindHelp}
	case "/status":
		return Command{Kind: KindStatus}
	}

	if strings.HasPrefix(lower, createPrefix) {
		topic := strings.TrimSpace(trimmed[len(createPrefix):])
		if topic == "" {
			return Command{Kind: KindUnknown}
		}
		return Command{
			Kind:     KindCreatePost,
			Topic:    topic,
			Category: InferCategory(topic),
		}
	}

	return Command{Kind: KindUnknown}
}

// Keyword buckets for naive category inference; first bucket that matches
// wins, the fallback is a destination guide.
var categoryKeywords = []struct {
	category domain.PostCategory
	words    []string
}{
	{domain.CategoryLifehack, []string{"hack", "trick", "tip", "lifehack"}},
	{domain.CategoryBudget, []string{"budget", "cheap", "save", "price", "cost", "money"}},
	{domain.CategoryComparison, []string{" vs ", "versus", "compare", "better than"}},
	{domain.CategoryWeekend, []string{"weekend", "getaway", "48 hours", "two days"}},
	{domain.CategoryMistake, []string{"mistake", "error", "avoid", "wrong", "never"}},
}

// InferCategory guesses the archetype from topic keywords.
func InferCategory(topic string) domain.PostCategory {
	lower := " " + strings.ToLower(topic) + " "
	for _, bucket := range categoryKeywords {
		for _, w := range bucket.words {
			if strings.Contains(lower, w) {
				return bucket.category
			}
		}
	}
	return domain.CategoryDestination
}
