package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"paperagent/internal/llm"
	"paperagent/internal/paper"
)

// InsufficientContextResponse is returned when retrieval produced nothing;
// the language model is not consulted in that case.
const InsufficientContextResponse = "I couldn't find any relevant information in your papers to answer that question."

// truncationMarker is appended when context had to be cut to fit the budget.
const truncationMarker = "\n\n[...truncated for brevity...]"

const answerPrompt = `You are an assistant that answers questions about research papers.
Answer the question concisely and accurately, strictly using only the
information in the context excerpts below. If the answer cannot be found in
the context, say that you don't have enough information. Do not make up
any information.

Context:
%s

Question: %s

Answer:`

const summaryPrompt = `Provide a comprehensive and concise summary of the following research
paper. Focus on the main objectives, methodology, key findings, and
conclusions. The summary should be understandable to a non-expert while
capturing the essence of the research.

Title: %s

Paper content:
---
%s
---

Summary:`

// Generator assembles bounded context windows and asks the language model
// for grounded answers and summaries.
type Generator struct {
	llm             llm.Provider
	maxContextChars int
	maxTokens       int
}

// NewGenerator creates a Generator. maxContextChars bounds the assembled
// context; maxTokens bounds the model's output.
func NewGenerator(provider llm.Provider, maxContextChars, maxTokens int) *Generator {
	return &Generator{llm: provider, maxContextChars: maxContextChars, maxTokens: maxTokens}
}

// Answer synthesizes an answer to query from the retrieved sections.
// With zero sections it returns InsufficientContextResponse immediately.
func (g *Generator) Answer(ctx context.Context, query string, retrieved []Result) (string, error) {
	if len(retrieved) == 0 {
		return InsufficientContextResponse, nil
	}

	excerpts := g.assembleContext(retrieved)
	answer, err := g.llm.Complete(ctx, fmt.Sprintf(answerPrompt, excerpts, query), g.maxTokens)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// assembleContext concatenates section excerpts in rank order until the
// character budget is reached. Lower-ranked sections are dropped first;
// the top section alone is truncated if even it exceeds the budget.
func (g *Generator) assembleContext(retrieved []Result) string {
	var b strings.Builder
	for i, r := range retrieved {
		block := formatBlock(i+1, r)
		if b.Len()+len(block) > g.maxContextChars {
			if i == 0 {
				b.WriteString(truncateToBudget(block, g.maxContextChars))
				b.WriteString(truncationMarker)
			}
			break
		}
		b.WriteString(block)
	}
	return b.String()
}

// formatBlock renders one retrieved section with its source attribution.
func formatBlock(rank int, r Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Excerpt %d: %q", rank, r.Section.PaperTitle)
	if r.Section.Page > 0 {
		fmt.Fprintf(&b, ", page %d", r.Section.Page)
	}
	b.WriteString(" ---\n")
	b.WriteString(r.Section.Content)
	b.WriteString("\n\n")
	return b.String()
}

// Summarize produces a summary of one paper from its sections, supplied in
// reading order. The same context budget applies, truncating the tail of
// the paper rather than low-ranked sections. Falls back to the abstract
// when no sections exist.
func (g *Generator) Summarize(ctx context.Context, p *paper.Paper, sections []paper.Section) (string, error) {
	content := joinSections(sections)
	if content == "" {
		content = p.Abstract
	}
	if content == "" {
		return "", fmt.Errorf("paper %d has no extracted content to summarize", p.ID)
	}

	if len(content) > g.maxContextChars {
		content = truncateToBudget(content, g.maxContextChars) + truncationMarker
	}

	summary, err := g.llm.Complete(ctx, fmt.Sprintf(summaryPrompt, p.Title, content), g.maxTokens)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// truncateToBudget cuts s to at most n bytes without splitting a rune.
func truncateToBudget(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func joinSections(sections []paper.Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.Content != "" {
			parts = append(parts, s.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
